package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/soqlgrid/internal/ctxlog"
	"github.com/specialistvlad/soqlgrid/internal/depgraph"
	"github.com/specialistvlad/soqlgrid/internal/render"
)

// Connections lists the loaded connections.
func (a *App) Connections(ctx context.Context) error {
	model := a.Model()
	ctxlog.FromContext(a.context(ctx)).Debug("Listing connections.", "count", len(model.Connections))
	rows := make([][]string, len(model.Connections))
	type item struct {
		Name     string `json:"name" yaml:"name"`
		UUID     string `json:"uuid" yaml:"uuid"`
		Username string `json:"username" yaml:"username"`
		LoginURL string `json:"loginUrl" yaml:"loginUrl"`
		Queries  int    `json:"queries" yaml:"queries"`
	}
	items := make([]item, len(model.Connections))
	for i, c := range model.Connections {
		items[i] = item{c.DisplayName, c.UUID, c.Username, c.LoginURL, len(c.Queries)}
		rows[i] = []string{c.DisplayName, c.UUID, c.Username, c.LoginURL, strconv.Itoa(len(c.Queries))}
	}
	return render.Rows(a.outW, a.format(), []string{"Name", "UUID", "Username", "Login URL", "Queries"}, rows, items)
}

// Queries lists the queries of a connection in file order.
func (a *App) Queries(ctx context.Context, connRef string) error {
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	type item struct {
		Name      string `json:"name" yaml:"name"`
		UUID      string `json:"uuid" yaml:"uuid"`
		SOQL      string `json:"soql" yaml:"soql"`
		HasScript bool   `json:"hasScript" yaml:"hasScript"`
	}
	items := make([]item, len(conn.Queries))
	rows := make([][]string, len(conn.Queries))
	for i, q := range conn.Queries {
		hasScript := strings.TrimSpace(q.Script) != ""
		items[i] = item{q.Name, q.UUID, q.SOQL, hasScript}
		rows[i] = []string{q.Name, oneLine(q.SOQL), strconv.FormatBool(hasScript)}
	}
	return render.Rows(a.outW, a.format(), []string{"Name", "SOQL", "Script"}, rows, items)
}

// Deps statically checks the fetch references between the queries of a
// connection. It fails when a reference is unknown or queries form a cycle.
func (a *App) Deps(ctx context.Context, connRef string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	report := depgraph.Check(ctx, conn.Queries)

	type item struct {
		Query     string   `json:"query" yaml:"query"`
		DependsOn []string `json:"dependsOn" yaml:"dependsOn"`
		Dynamic   bool     `json:"dynamic" yaml:"dynamic"`
		Error     string   `json:"error,omitempty" yaml:"error,omitempty"`
	}
	items := make([]item, len(report.Queries))
	rows := make([][]string, len(report.Queries))
	for i, q := range report.Queries {
		it := item{Query: q.Name, DependsOn: q.DependsOn, Dynamic: q.Dynamic}
		if it.DependsOn == nil {
			it.DependsOn = []string{}
		}
		if q.Err != nil {
			it.Error = q.Err.Error()
		}
		items[i] = it
		rows[i] = []string{q.Name, strings.Join(q.DependsOn, ", "), strconv.FormatBool(q.Dynamic), it.Error}
	}
	if err := render.Rows(a.outW, a.format(), []string{"Query", "Depends on", "Dynamic", "Error"}, rows, items); err != nil {
		return err
	}

	for _, name := range report.Shadowed {
		a.logger.Warn("Query name is defined more than once; only the first is used.", "query", name)
	}
	if report.OK() {
		a.logger.Debug("Dependency order.", "order", report.Order)
		return nil
	}
	var problems []string
	for _, u := range report.Unknown {
		problems = append(problems, fmt.Sprintf("query %q fetches unknown query %q", u.Query, u.Ref))
	}
	for _, c := range report.Cycles {
		problems = append(problems, "cycle: "+c.String())
	}
	for _, q := range report.Queries {
		if q.Err != nil {
			problems = append(problems, fmt.Sprintf("query %q: %v", q.Name, q.Err))
		}
	}
	return fmt.Errorf("dependency check failed: %s", strings.Join(problems, "; "))
}

// Describe writes the fields of one object.
func (a *App) Describe(ctx context.Context, connRef, object string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	session, err := a.registry.Session(ctx, conn)
	if err != nil {
		return err
	}
	desc, err := session.DescribeObject(ctx, object)
	if err != nil {
		return err
	}
	rows := make([][]string, len(desc.Fields))
	for i, f := range desc.Fields {
		rows[i] = []string{f.Name, f.Label, f.Type}
	}
	return render.Rows(a.outW, a.format(), []string{"Name", "Label", "Type"}, rows, desc.Fields)
}

// Objects writes the objects the connection can see.
func (a *App) Objects(ctx context.Context, connRef string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	session, err := a.registry.Session(ctx, conn)
	if err != nil {
		return err
	}
	objects, err := session.DescribeGlobal(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(objects))
	for i, o := range objects {
		rows[i] = []string{o.Name, o.Label, strconv.FormatBool(o.Queryable), strconv.FormatBool(o.Custom)}
	}
	return render.Rows(a.outW, a.format(), []string{"Name", "Label", "Queryable", "Custom"}, rows, objects)
}

// Jobs writes the bulk ingest jobs of the org.
func (a *App) Jobs(ctx context.Context, connRef string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	session, err := a.registry.Session(ctx, conn)
	if err != nil {
		return err
	}
	jobs, err := session.ListIngestJobs(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = []string{j.ID, j.Object, j.Operation, j.State, j.CreatedAt}
	}
	return render.Rows(a.outW, a.format(), []string{"ID", "Object", "Operation", "State", "Created"}, rows, jobs)
}

// Check performs a test login with the connection's credentials. The
// session is closed right away and not kept.
func (a *App) Check(ctx context.Context, connRef string) error {
	ctx = a.context(ctx)
	conn, err := a.connection(connRef)
	if err != nil {
		return err
	}
	sess, err := a.registry.Login(ctx, conn, true)
	if err != nil {
		a.logger.Error("❌ Login failed", "connection", conn.DisplayName, "error", err)
		return err
	}
	_, err = fmt.Fprintf(a.outW, "%s: ok (%s)\n", conn.DisplayName, sess.InstanceURL())
	return err
}

// StampIDs writes generated UUIDs back into the connection files.
func (a *App) StampIDs(ctx context.Context) error {
	ctx = a.context(ctx)
	n, err := a.stamper(ctx, a.Model())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.outW, "%d id(s) written\n", n)
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
