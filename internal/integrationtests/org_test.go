package integrationtests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeOrg serves the OAuth and REST endpoints soqlgrid calls. Query
// answers are keyed by the exact query text.
type fakeOrg struct {
	*httptest.Server

	mu      sync.Mutex
	results map[string][]map[string]any
	objects map[string][]string
	queries []string
}

func newFakeOrg(t *testing.T) *fakeOrg {
	t.Helper()
	org := &fakeOrg{
		results: make(map[string][]map[string]any),
		objects: make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":             "invalid_grant",
				"error_description": "authentication failure",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "token-1",
			"instance_url": org.URL,
		})
	})
	mux.HandleFunc("POST /services/oauth2/revoke", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /services/data/v59.0/query", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		org.mu.Lock()
		org.queries = append(org.queries, q)
		rows, ok := org.results[q]
		org.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusBadRequest, []map[string]string{{
				"message":   "unexpected query: " + q,
				"errorCode": "MALFORMED_QUERY",
			}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"totalSize": len(rows), "done": true, "records": rows})
	})
	mux.HandleFunc("GET /services/data/v59.0/sobjects/{name}/describe", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		org.mu.Lock()
		fields, ok := org.objects[name]
		org.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, []map[string]string{{
				"message":   "The requested resource does not exist",
				"errorCode": "NOT_FOUND",
			}})
			return
		}
		desc := map[string]any{"name": name, "label": name}
		var fs []map[string]string
		for _, f := range fields {
			fs = append(fs, map[string]string{"name": f, "label": f, "type": "string"})
		}
		desc["fields"] = fs
		writeJSON(w, http.StatusOK, desc)
	})

	org.Server = httptest.NewServer(mux)
	t.Cleanup(org.Close)
	return org
}

func (o *fakeOrg) withResult(soql string, rows ...map[string]any) *fakeOrg {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rows == nil {
		rows = []map[string]any{}
	}
	o.results[soql] = rows
	return o
}

func (o *fakeOrg) withObject(name string, fields ...string) *fakeOrg {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.objects[name] = fields
	return o
}

func (o *fakeOrg) received() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.queries...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
