// Package connector defines the contract between the resolution engine and a
// remote data source: running a literal query and describing an object's
// schema. Authentication and session lifecycle belong to implementations.
package connector

import (
	"context"
)

// Connector is what the engine needs from a data source.
type Connector interface {
	// Query runs literal query text and returns the raw, nested result.
	Query(ctx context.Context, soql string) (*QueryResult, error)
	// DescribeObject returns the schema of a single object type.
	DescribeObject(ctx context.Context, name string) (*ObjectDescription, error)
}

// Session is a logged-in connector with the extra operations the CLI exposes.
type Session interface {
	Connector
	DescribeGlobal(ctx context.Context) ([]ObjectSummary, error)
	ListIngestJobs(ctx context.Context) ([]JobInfo, error)
	// InstanceURL is the org endpoint the session talks to.
	InstanceURL() string
	Logout(ctx context.Context) error
}

// QueryResult is the raw result payload. Records keep the source nesting:
// relationship records carry an "attributes" map and sub-query results are
// themselves QueryResult-shaped maps with a "records" list.
type QueryResult struct {
	TotalSize      int              `json:"totalSize"`
	Done           bool             `json:"done"`
	NextRecordsURL string           `json:"nextRecordsUrl,omitempty"`
	Records        []map[string]any `json:"records"`
}

// ObjectDescription is the subset of an object describe the engine uses.
type ObjectDescription struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Fields []Field `json:"fields"`
}

// Field is one field of a described object.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ObjectSummary is one entry of a global describe.
type ObjectSummary struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Queryable bool   `json:"queryable"`
	Custom    bool   `json:"custom"`
}

// JobInfo describes one bulk ingest job.
type JobInfo struct {
	ID         string `json:"id" yaml:"id"`
	Object     string `json:"object" yaml:"object"`
	Operation  string `json:"operation" yaml:"operation"`
	State      string `json:"state" yaml:"state"`
	JobType    string `json:"jobType" yaml:"jobType"`
	CreatedBy  string `json:"createdById" yaml:"createdById"`
	CreatedAt  string `json:"createdDate" yaml:"createdDate"`
	APIVersion any    `json:"apiVersion" yaml:"apiVersion"`
}
