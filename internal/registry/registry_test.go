package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/soqlgrid/internal/config"
	"github.com/specialistvlad/soqlgrid/internal/connector"
	"github.com/specialistvlad/soqlgrid/internal/connector/connectortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dialRecorder struct {
	fakes []*connectortest.Fake
	err   error
}

func (d *dialRecorder) Dial(ctx context.Context, conn *config.Connection) (connector.Session, error) {
	if d.err != nil {
		return nil, d.err
	}
	f := connectortest.New()
	d.fakes = append(d.fakes, f)
	return f, nil
}

func TestRegistry_LoginGetLogout(t *testing.T) {
	d := &dialRecorder{}
	r := New(d)
	conn := &config.Connection{UUID: "u1", DisplayName: "Prod"}

	sess, err := r.Login(context.Background(), conn, false)
	require.NoError(t, err)

	got, ok := r.Get("u1")
	require.True(t, ok)
	assert.Same(t, sess, got)

	require.NoError(t, r.Logout(context.Background(), "u1"))
	assert.True(t, d.fakes[0].LoggedOut())
	_, ok = r.Get("u1")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Logout(context.Background(), "u1"), ErrNotLoggedIn)
}

func TestRegistry_LoginReplacesExistingSession(t *testing.T) {
	d := &dialRecorder{}
	r := New(d)
	conn := &config.Connection{UUID: "u1", DisplayName: "Prod"}

	_, err := r.Login(context.Background(), conn, false)
	require.NoError(t, err)
	second, err := r.Login(context.Background(), conn, false)
	require.NoError(t, err)

	require.Len(t, d.fakes, 2)
	assert.True(t, d.fakes[0].LoggedOut(), "the old session is logged out first")
	assert.False(t, d.fakes[1].LoggedOut())

	got, _ := r.Get("u1")
	assert.Same(t, second, got)
}

func TestRegistry_TestLoginIsNotRegistered(t *testing.T) {
	d := &dialRecorder{}
	r := New(d)

	_, err := r.Login(context.Background(), &config.Connection{UUID: "u1"}, true)
	require.NoError(t, err)

	assert.True(t, d.fakes[0].LoggedOut())
	_, ok := r.Get("u1")
	assert.False(t, ok)
}

func TestRegistry_LoginFailure(t *testing.T) {
	boom := errors.New("INVALID_LOGIN")
	r := New(&dialRecorder{err: boom})

	_, err := r.Login(context.Background(), &config.Connection{UUID: "u1", DisplayName: "Prod"}, false)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `login to "Prod" failed`)
}

func TestRegistry_SessionAndClose(t *testing.T) {
	d := &dialRecorder{}
	r := New(d)
	a := &config.Connection{UUID: "a"}
	b := &config.Connection{UUID: "b"}

	s1, err := r.Session(context.Background(), a)
	require.NoError(t, err)
	s2, err := r.Session(context.Background(), a)
	require.NoError(t, err)
	assert.Same(t, s1, s2, "an existing session is reused")

	_, err = r.Session(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, d.fakes, 2)

	require.NoError(t, r.Close(context.Background()))
	for _, f := range d.fakes {
		assert.True(t, f.LoggedOut())
	}
}
