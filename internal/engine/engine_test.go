package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/connector/connectortest"
	"github.com/specialistvlad/soqlgrid/internal/record"
	"github.com/specialistvlad/soqlgrid/internal/script"
	"github.com/specialistvlad/soqlgrid/internal/soql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(id string) map[string]any {
	return map[string]any{
		"attributes": map[string]any{"type": "Account", "url": "/services/data/v59.0/sobjects/Account/" + id},
		"Id":         id,
	}
}

func TestEngine_Resolve_EndToEnd(t *testing.T) {
	fake := connectortest.New().WithResult("select Id from Account", account("1"), account("2"))
	e := New(fake, []*config.Query{{Name: "A", SOQL: "select Id from Account"}})

	before := e.Snapshot(0)
	assert.Equal(t, Pending, before.State)

	records, err := e.Resolve(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"Id": "1"}, {"Id": "2"}}, records)

	snap := e.Snapshot(0)
	assert.Equal(t, Resolved, snap.State)
	assert.True(t, snap.UpToDate)
	assert.False(t, snap.InProgress)
	assert.NoError(t, snap.Err)
	assert.Equal(t, "select Id from Account", snap.Text)
	assert.Equal(t, records, snap.Records)
}

func TestEngine_Resolve_CachesOutcome(t *testing.T) {
	fake := connectortest.New().WithResult("select Id from Account", account("1"))
	e := New(fake, []*config.Query{{Name: "A", SOQL: "select Id from Account"}})

	first, err := e.Resolve(context.Background(), 0)
	require.NoError(t, err)
	second, err := e.Resolve(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, fake.Queries(), 1, "the connector must be called at most once")

	e.Invalidate(0)
	_, err = e.Resolve(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, fake.Queries(), 2)
}

func TestEngine_Resolve_CachesErrors(t *testing.T) {
	fake := connectortest.New().WithQueryError("select Nope from Account", errors.New("no such column"))
	e := New(fake, []*config.Query{{Name: "A", SOQL: "select Nope from Account"}})

	_, err := e.Resolve(context.Background(), 0)
	var connErr *connector.Error
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "MALFORMED_QUERY", connErr.Code)

	_, again := e.Resolve(context.Background(), 0)
	assert.Same(t, err, again)
	assert.Len(t, fake.Queries(), 1)

	snap := e.Snapshot(0)
	assert.Equal(t, Resolved, snap.State)
	assert.Equal(t, "select Nope from Account", snap.Text)
}

func TestEngine_Resolve_TextPassthrough(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		sent     string
	}{
		{
			name:     "comments and whitespace are cleaned",
			template: "select Id  -- pick ids\n  from   Account /* all */",
			sent:     "select Id from Account",
		},
		{
			name:     "placeholder inside string is literal",
			template: "select Id from Account where Name = '[x]'",
			sent:     "select Id from Account where Name = '[x]'",
		},
		{
			name:     "placeholder inside comment is ignored",
			template: "select Id from Account -- [x]",
			sent:     "select Id from Account",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := connectortest.New().WithResult(tc.sent, account("1"))
			e := New(fake, []*config.Query{{Name: "A", SOQL: tc.template}})

			_, err := e.Resolve(context.Background(), 0)
			require.NoError(t, err)
			assert.Equal(t, []string{tc.sent}, fake.Queries())
		})
	}
}

func TestEngine_Resolve_CompoundQuery(t *testing.T) {
	fake := connectortest.New().
		WithResult("select Id from Account", account("1"), account("2")).
		WithResult("select Id, Name from Contact where AccountId in ('1','2') and CreatedDate > 2024-01-02T03:04:05Z",
			map[string]any{"Id": "c1", "Name": "O'Brien"})

	queries := []*config.Query{
		{Name: "Accounts", SOQL: "select Id from Account"},
		{
			Name: "Contacts",
			SOQL: "select Id, Name from Contact where AccountId in [ids] and CreatedDate > [since]",
			Script: `
ids   = [for a in fetch("Accounts") : a.Id]
since = datetime("2024-01-02T03:04:05.678+00:00")
`,
		},
	}
	e := New(fake, queries)

	records, err := e.ResolveByName(context.Background(), "Contacts")
	require.NoError(t, err)
	assert.Equal(t, []record.Record{{"Id": "c1", "Name": "O'Brien"}}, records)

	accounts, err := e.ResolveByName(context.Background(), "Accounts")
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Len(t, fake.Queries(), 2, "the dependency must be served from its store")
}

func TestEngine_Resolve_ForceRefresh(t *testing.T) {
	fake := connectortest.New().
		WithResult("select Id from Account", account("1")).
		WithResult("select Id from Contact where AccountId in ('1')")

	queries := []*config.Query{
		{Name: "Accounts", SOQL: "select Id from Account"},
		{
			Name:   "Contacts",
			SOQL:   "select Id from Contact where AccountId in [ids]",
			Script: `ids = [for a in fetch("Accounts", true) : a.Id]`,
		},
	}
	e := New(fake, queries)

	_, err := e.Resolve(context.Background(), 0)
	require.NoError(t, err)
	_, err = e.Resolve(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"select Id from Account",
		"select Id from Account",
		"select Id from Contact where AccountId in ('1')",
	}, fake.Queries())
}

func TestEngine_Resolve_Wildcards(t *testing.T) {
	fake := connectortest.New().
		WithObject("Account", "Id", "Name").
		WithResult("select Account.Id,Account.Name from Account", account("1"))
	e := New(fake, []*config.Query{{Name: "A", SOQL: "select Account.* from Account"}})

	_, err := e.Resolve(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Account"}, fake.Describes())
	assert.Equal(t, "select Account.Id,Account.Name from Account", e.Snapshot(0).Text)
}

func TestEngine_Resolve_SelfReference(t *testing.T) {
	fake := connectortest.New()
	queries := []*config.Query{{
		Name:   "A",
		SOQL:   "select Id from Account where Id in [ids]",
		Script: `ids = [for a in fetch("A") : a.Id]`,
	}}
	e := New(fake, queries)

	_, err := e.Resolve(context.Background(), 0)
	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, "A", cyclic.Query)
	assert.Contains(t, cyclic.Error(), "recursive queries are not allowed")

	var scriptErr *script.Error
	assert.ErrorAs(t, err, &scriptErr)

	snap := e.Snapshot(0)
	assert.False(t, snap.InProgress)
	assert.True(t, snap.UpToDate)
	assert.Same(t, err, snap.Err)
	assert.Empty(t, fake.Queries())
}

func TestEngine_Resolve_TransitiveCycle(t *testing.T) {
	queries := []*config.Query{
		{Name: "A", SOQL: "select Id from Account where Id in [ids]", Script: `ids = [for r in fetch("B") : r.Id]`},
		{Name: "B", SOQL: "select Id from Contact where Id in [ids]", Script: `ids = [for r in fetch("A") : r.Id]`},
	}
	e := New(connectortest.New(), queries)

	_, err := e.Resolve(context.Background(), 0)
	var cyclic *CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, "A", cyclic.Query)

	for i := range queries {
		snap := e.Snapshot(i)
		assert.False(t, snap.InProgress, "store %d left in progress", i)
		assert.True(t, snap.UpToDate, "store %d not finalized", i)
		assert.Error(t, snap.Err)
		assert.Equal(t, queries[i].SOQL, snap.Text, "store %d lost its text", i)
	}
}

func TestEngine_Resolve_UnknownDependency(t *testing.T) {
	queries := []*config.Query{{
		Name:   "A",
		SOQL:   "select Id from Account where Id in [ids]",
		Script: `ids = fetch("Missing")`,
	}}
	e := New(connectortest.New(), queries)

	_, err := e.Resolve(context.Background(), 0)
	assert.ErrorIs(t, err, ErrUnknownQuery)
}

func TestEngine_Resolve_DependencyErrorIsNotMasked(t *testing.T) {
	boom := errors.New("bad column")
	fake := connectortest.New().WithQueryError("select Nope from Account", boom)
	queries := []*config.Query{
		{Name: "Accounts", SOQL: "select Nope from Account"},
		{Name: "Contacts", SOQL: "select Id from Contact where AccountId in [ids]", Script: `ids = [for a in fetch("Accounts") : a.Id]`},
	}
	e := New(fake, queries)

	_, err := e.Resolve(context.Background(), 1)
	require.ErrorIs(t, err, boom)

	var connErr *connector.Error
	require.ErrorAs(t, err, &connErr)
	assert.Same(t, e.Snapshot(0).Err, error(connErr))
}

func TestEngine_Resolve_FailuresFinalizeStore(t *testing.T) {
	testCases := []struct {
		name  string
		query *config.Query
		opts  []Option
		check func(t *testing.T, err error)
	}{
		{
			name:  "unterminated string",
			query: &config.Query{Name: "A", SOQL: "select Id from Account where Name = 'x"},
			check: func(t *testing.T, err error) {
				var parseErr *soql.ParseError
				assert.ErrorAs(t, err, &parseErr)
			},
		},
		{
			name:  "placeholder without script value",
			query: &config.Query{Name: "A", SOQL: "select Id from Account where Id = [id]"},
			check: func(t *testing.T, err error) {
				var scriptErr *script.Error
				require.ErrorAs(t, err, &scriptErr)
				assert.Equal(t, "id", scriptErr.Name)
			},
		},
		{
			name:  "describe failure",
			query: &config.Query{Name: "A", SOQL: "select Ghost.* from Ghost"},
			check: func(t *testing.T, err error) {
				var connErr *connector.Error
				require.ErrorAs(t, err, &connErr)
				assert.Equal(t, 404, connErr.Status)
			},
		},
		{
			name:  "evaluator panic",
			query: &config.Query{Name: "A", SOQL: "select Id from Account where Id = [id]"},
			opts: []Option{WithEvaluator(evaluatorFunc(func() (map[string]any, error) {
				panic("kaboom")
			}))},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "kaboom")
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fake := connectortest.New()
			e := New(fake, []*config.Query{tc.query}, tc.opts...)

			_, err := e.Resolve(context.Background(), 0)
			require.Error(t, err)
			tc.check(t, err)

			snap := e.Snapshot(0)
			assert.Equal(t, Resolved, snap.State)
			assert.False(t, snap.InProgress)
			assert.Equal(t, tc.query.SOQL, snap.Text, "text keeps how far the attempt got")
			assert.Empty(t, fake.Queries())
		})
	}
}

func TestEngine_Resolve_InProgressIsExclusive(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	fake := connectortest.New().WithResult("select Id from Account", account("1"))
	fake.OnQuery = func(ctx context.Context, soql string) {
		close(entered)
		<-release
	}
	e := New(fake, []*config.Query{{Name: "A", SOQL: "select Id from Account"}})

	done := make(chan error, 1)
	e.ResolveAsync(context.Background(), 0, func(err error, records []record.Record) {
		done <- err
	})

	<-entered
	assert.Equal(t, InProgress, e.Snapshot(0).State)

	_, err := e.Resolve(context.Background(), 0)
	var cyclic *CyclicDependencyError
	assert.ErrorAs(t, err, &cyclic)

	e.Invalidate(0)
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("async resolution did not finish")
	}
	assert.True(t, e.Snapshot(0).UpToDate, "invalidating a store in progress is a no-op")
}

func TestEngine_InvalidateAll(t *testing.T) {
	fake := connectortest.New().
		WithResult("select Id from Account", account("1")).
		WithResult("select Id from Contact")
	e := New(fake, []*config.Query{
		{Name: "A", SOQL: "select Id from Account"},
		{Name: "C", SOQL: "select Id from Contact"},
	})

	for i := 0; i < e.Len(); i++ {
		_, err := e.Resolve(context.Background(), i)
		require.NoError(t, err)
	}
	e.InvalidateAll()
	for i := 0; i < e.Len(); i++ {
		assert.Equal(t, Pending, e.Snapshot(i).State)
	}
}

func TestEngine_BadIndexAndName(t *testing.T) {
	e := New(connectortest.New(), nil)

	_, err := e.Resolve(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNoSuchIndex)

	_, err = e.ResolveByName(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownQuery)

	assert.Equal(t, StoreSnapshot{}, e.Snapshot(-1))
}

type evaluatorFunc func() (map[string]any, error)

func (f evaluatorFunc) Evaluate(ctx context.Context, source string, names []string, acc script.Accessor) (map[string]any, error) {
	return f()
}
