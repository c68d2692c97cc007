package config

import "strings"

const (
	// DefaultLoginURL is used when a connection does not name one.
	DefaultLoginURL = "https://login.salesforce.com"
	// DefaultAPIVersion is the REST API version used when none is set.
	DefaultAPIVersion = "59.0"
)

// Model is the unified representation of every loaded connection file.
type Model struct {
	Connections []*Connection
}

// Connection is one org login together with the queries that run against it.
type Connection struct {
	UUID         string
	DisplayName  string
	LoginURL     string
	Username     string
	Password     string
	Token        string
	ClientID     string
	ClientSecret string
	APIVersion   string
	Queries      []*Query

	// SourceFile is the file the connection was read from, if any.
	SourceFile string
}

// Query is a named SOQL template plus the script computing its placeholders.
type Query struct {
	UUID   string
	Name   string
	SOQL   string
	Script string
}

// Connection returns the connection whose UUID or display name equals ref.
// UUIDs win over display names; display names compare case-insensitively.
func (m *Model) Connection(ref string) (*Connection, bool) {
	if m == nil {
		return nil, false
	}
	for _, c := range m.Connections {
		if c.UUID == ref {
			return c, true
		}
	}
	for _, c := range m.Connections {
		if strings.EqualFold(c.DisplayName, ref) {
			return c, true
		}
	}
	return nil, false
}

// QueryIndex returns the index of the first query named name. Duplicate
// names are allowed but only the first one is reachable.
func (c *Connection) QueryIndex(name string) (int, bool) {
	for i, q := range c.Queries {
		if q.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Query returns the first query named name.
func (c *Connection) Query(name string) (*Query, bool) {
	i, ok := c.QueryIndex(name)
	if !ok {
		return nil, false
	}
	return c.Queries[i], true
}

// Secret returns the secret sent at login: password followed by the
// security token.
func (c *Connection) Secret() string {
	return c.Password + c.Token
}
