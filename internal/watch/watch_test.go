package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/soqlgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitCall(t *testing.T, calls <-chan struct{}) {
	t.Helper()
	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("callback was not called")
	}
}

func TestWatcher_RunsOnStartAndOnChange(t *testing.T) {
	ctx, logs := testutil.Context(t)
	ctx, cancel := context.WithCancel(ctx)

	dir := testutil.WriteFiles(t, map[string]string{"conn.hcl": "# v1\n", "other.txt": "x"})
	path := filepath.Join(dir, "conn.hcl")

	calls := make(chan struct{}, 10)
	w := New([]string{path}, func(ctx context.Context) error {
		calls <- struct{}{}
		return errors.New("query failed")
	})
	w.Debounce = 20 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitCall(t, calls)

	// give the watcher a moment to be registered before writing
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("# v2\n"), 0o644))
	waitCall(t, calls)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Contains(t, logs.String(), "Watch callback failed.")
}

func TestWatcher_DirectoryMatchesHCLOnly(t *testing.T) {
	dir := t.TempDir()
	m := matcher{files: map[string]bool{}, dirs: map[string]bool{dir: true}}

	assert.True(t, m.match(filepath.Join(dir, "a.hcl")))
	assert.False(t, m.match(filepath.Join(dir, "a.txt")))
	assert.False(t, m.match(filepath.Join(dir, "sub", "a.hcl")))
}
