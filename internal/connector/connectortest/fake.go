// Package connectortest provides an in-memory connector.Session whose answers
// are scripted by the test and whose calls are recorded.
package connectortest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/soqlgrid/internal/connector"
)

// InstanceURL is the endpoint every fake session reports.
const InstanceURL = "https://fake.my.salesforce.com"

// ErrNotScripted is returned for a query text the fake has no answer for.
var ErrNotScripted = errors.New("no result scripted for query")

// Fake is a scripted connector. The zero value is not usable; call New.
type Fake struct {
	mu sync.Mutex

	results  map[string]*connector.QueryResult
	failures map[string]error
	objects  map[string]*connector.ObjectDescription
	jobs     []connector.JobInfo

	// OnQuery, when set, runs before a scripted answer is looked up. It lets a
	// test block, count or re-enter from inside a connector call.
	OnQuery func(ctx context.Context, soql string)

	queries   []string
	describes []string
	loggedOut bool
}

// New creates an empty fake.
func New() *Fake {
	return &Fake{
		results:  make(map[string]*connector.QueryResult),
		failures: make(map[string]error),
		objects:  make(map[string]*connector.ObjectDescription),
	}
}

// WithResult scripts the rows returned for an exact query text.
func (f *Fake) WithResult(soql string, rows ...map[string]any) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rows == nil {
		rows = []map[string]any{}
	}
	f.results[soql] = &connector.QueryResult{TotalSize: len(rows), Done: true, Records: rows}
	return f
}

// WithQueryError scripts a failure for an exact query text.
func (f *Fake) WithQueryError(soql string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[soql] = err
	return f
}

// WithObject scripts the fields reported for an object. Lookups ignore case.
func (f *Fake) WithObject(name string, fields ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	desc := &connector.ObjectDescription{Name: name, Label: name}
	for _, field := range fields {
		desc.Fields = append(desc.Fields, connector.Field{Name: field, Label: field, Type: "string"})
	}
	f.objects[strings.ToUpper(name)] = desc
	return f
}

// WithJobs scripts the bulk ingest jobs listing.
func (f *Fake) WithJobs(jobs ...connector.JobInfo) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, jobs...)
	return f
}

// Query implements connector.Connector.
func (f *Fake) Query(ctx context.Context, soql string) (*connector.QueryResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, soql)
	hook := f.OnQuery
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, soql)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[soql]; ok {
		return nil, &connector.Error{Op: "query", Target: soql, Status: 400, Code: "MALFORMED_QUERY", Err: err}
	}
	if res, ok := f.results[soql]; ok {
		return res, nil
	}
	return nil, &connector.Error{Op: "query", Target: soql, Err: ErrNotScripted}
}

// DescribeObject implements connector.Connector.
func (f *Fake) DescribeObject(ctx context.Context, name string) (*connector.ObjectDescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describes = append(f.describes, name)
	if desc, ok := f.objects[strings.ToUpper(name)]; ok {
		return desc, nil
	}
	return nil, &connector.Error{Op: "describe", Target: name, Status: 404, Code: "NOT_FOUND", Err: errors.New("The requested resource does not exist")}
}

// DescribeGlobal implements connector.Session.
func (f *Fake) DescribeGlobal(ctx context.Context) ([]connector.ObjectSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]connector.ObjectSummary, 0, len(f.objects))
	for _, desc := range f.objects {
		out = append(out, connector.ObjectSummary{Name: desc.Name, Label: desc.Label, Queryable: true})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListIngestJobs implements connector.Session.
func (f *Fake) ListIngestJobs(ctx context.Context) ([]connector.JobInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]connector.JobInfo(nil), f.jobs...), nil
}

// InstanceURL implements connector.Session.
func (f *Fake) InstanceURL() string {
	return InstanceURL
}

// Logout implements connector.Session.
func (f *Fake) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	return nil
}

// Queries returns every query text received, in call order.
func (f *Fake) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// Describes returns every object name described, in call order.
func (f *Fake) Describes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.describes...)
}

// LoggedOut reports whether Logout was called.
func (f *Fake) LoggedOut() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedOut
}

var _ connector.Session = (*Fake)(nil)
