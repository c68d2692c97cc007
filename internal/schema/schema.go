// Package schema holds the gohcl decoding targets for connection files.
//
// A connection file looks like:
//
//	connection "Production" {
//	  username = "me@example.com"
//	  password = env("SF_PASSWORD")
//	  token    = env("SF_TOKEN")
//
//	  query "Accounts" {
//	    soql = "select Id, Name from Account limit 10"
//	  }
//
//	  query "Contacts" {
//	    soql   = "select Contact.* from Contact where AccountId in [ids]"
//	    script = <<-EOT
//	      ids = [for a in fetch("Accounts") : a.Id]
//	    EOT
//	  }
//	}
//
// Attribute values are HCL expressions evaluated at load time, so a script
// that needs its own ${...} interpolation writes it as $${...}.
package schema

import "github.com/hashicorp/hcl/v2"

// File is the top-level structure of a connection file.
type File struct {
	Connections []*Connection `hcl:"connection,block"`
	Remain      hcl.Body      `hcl:",remain"`
}

// Connection is a `connection` block.
type Connection struct {
	DisplayName  string   `hcl:"display_name,label"`
	UUID         string   `hcl:"uuid,optional"`
	LoginURL     string   `hcl:"login_url,optional"`
	Username     string   `hcl:"username,optional"`
	Password     string   `hcl:"password,optional"`
	Token        string   `hcl:"token,optional"`
	ClientID     string   `hcl:"client_id,optional"`
	ClientSecret string   `hcl:"client_secret,optional"`
	APIVersion   string   `hcl:"api_version,optional"`
	Queries      []*Query `hcl:"query,block"`
}

// Query is a `query` block nested in a connection.
type Query struct {
	Name   string `hcl:"name,label"`
	UUID   string `hcl:"uuid,optional"`
	SOQL   string `hcl:"soql,optional"`
	Script string `hcl:"script,optional"`
}
