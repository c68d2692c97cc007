package salesforce

import (
	"context"
	"net/url"

	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
)

// Query runs soql and follows nextRecordsUrl until the result is complete.
func (s *Session) Query(ctx context.Context, soql string) (*connector.QueryResult, error) {
	logger := ctxlog.FromContext(ctx)

	var page connector.QueryResult
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("q", soql).
		SetResult(&page).
		Get(s.dataPath("/query"))
	if err != nil {
		return nil, &connector.Error{Op: "query", Target: soql, Err: err}
	}
	if res.IsError() {
		return nil, responseError("query", soql, res.StatusCode(), res.Bytes())
	}

	out := &connector.QueryResult{TotalSize: page.TotalSize, Records: page.Records}
	for !page.Done && page.NextRecordsURL != "" {
		next := page.NextRecordsURL
		logger.Debug("Fetching next result page.", "url", next, "records_so_far", len(out.Records))

		page = connector.QueryResult{}
		res, err := s.client.R().
			SetContext(ctx).
			SetResult(&page).
			Get(next)
		if err != nil {
			return nil, &connector.Error{Op: "query", Target: soql, Err: err}
		}
		if res.IsError() {
			return nil, responseError("query", soql, res.StatusCode(), res.Bytes())
		}
		out.Records = append(out.Records, page.Records...)
	}
	out.Done = true
	if out.Records == nil {
		out.Records = []map[string]any{}
	}
	return out, nil
}

// DescribeObject returns the fields of one object type.
func (s *Session) DescribeObject(ctx context.Context, name string) (*connector.ObjectDescription, error) {
	var desc connector.ObjectDescription
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&desc).
		Get(s.dataPath("/sobjects/%s/describe", url.PathEscape(name)))
	if err != nil {
		return nil, &connector.Error{Op: "describe", Target: name, Err: err}
	}
	if res.IsError() {
		return nil, responseError("describe", name, res.StatusCode(), res.Bytes())
	}
	return &desc, nil
}

// DescribeGlobal lists every object type of the org.
func (s *Session) DescribeGlobal(ctx context.Context) ([]connector.ObjectSummary, error) {
	var body struct {
		SObjects []connector.ObjectSummary `json:"sobjects"`
	}
	res, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(s.dataPath("/sobjects"))
	if err != nil {
		return nil, &connector.Error{Op: "describe global", Err: err}
	}
	if res.IsError() {
		return nil, responseError("describe global", "", res.StatusCode(), res.Bytes())
	}
	return body.SObjects, nil
}

type jobsPage struct {
	Done           bool                `json:"done"`
	NextRecordsURL string              `json:"nextRecordsUrl"`
	Records        []connector.JobInfo `json:"records"`
}

// ListIngestJobs pages through the bulk API 2.0 ingest jobs.
func (s *Session) ListIngestJobs(ctx context.Context) ([]connector.JobInfo, error) {
	var jobs []connector.JobInfo
	next := s.dataPath("/jobs/ingest")
	for next != "" {
		var page jobsPage
		res, err := s.client.R().
			SetContext(ctx).
			SetResult(&page).
			Get(next)
		if err != nil {
			return nil, &connector.Error{Op: "list jobs", Err: err}
		}
		if res.IsError() {
			return nil, responseError("list jobs", "", res.StatusCode(), res.Bytes())
		}
		jobs = append(jobs, page.Records...)
		next = ""
		if !page.Done {
			next = page.NextRecordsURL
		}
	}
	return jobs, nil
}
