package store

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/existflow/snipvault/internal/model"
	"github.com/existflow/snipvault/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHolder struct {
	tokenstore.MemoryHolder
	writeErr error
	clearErr error
}

func (h *failingHolder) Write(token string) error {
	if h.writeErr != nil {
		return h.writeErr
	}
	return h.MemoryHolder.Write(token)
}

func (h *failingHolder) Clear() error {
	_ = h.MemoryHolder.Clear()
	return h.clearErr
}

func TestNewSessionReadsPersistedToken(t *testing.T) {
	s := NewSession(tokenstore.NewMemoryHolder("persisted"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "persisted", s.Token())
	assert.Nil(t, s.User())

	empty := NewSession(tokenstore.NewMemoryHolder(""))
	assert.False(t, empty.IsAuthenticated())
	assert.Equal(t, "", empty.Token())
}

func TestSetTokenPersistsAndAuthenticates(t *testing.T) {
	holder := tokenstore.NewMemoryHolder("")
	s := NewSession(holder)

	require.NoError(t, s.SetToken("tok123"))

	stored, ok := holder.Read()
	assert.True(t, ok)
	assert.Equal(t, "tok123", stored)
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "tok123", s.Token())
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	holder := tokenstore.NewMemoryHolder("")
	s := NewSession(holder)

	err := s.SetToken("")
	assert.ErrorIs(t, err, ErrEmptyToken)
	assert.False(t, s.IsAuthenticated())
	_, ok := holder.Read()
	assert.False(t, ok)

	require.NoError(t, s.SetToken("real"))
	assert.ErrorIs(t, s.SetToken(""), ErrEmptyToken)
	assert.Equal(t, "real", s.Token(), "rejected token leaves prior state")
}

func TestSetTokenPersistFailureLeavesState(t *testing.T) {
	holder := &failingHolder{writeErr: errors.New("disk full")}
	s := NewSession(holder)

	err := s.SetToken("tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, s.IsAuthenticated())
}

func TestLogoutClearsEverythingAndIsIdempotent(t *testing.T) {
	holder := tokenstore.NewMemoryHolder("")
	s := NewSession(holder)
	require.NoError(t, s.SetToken("tok"))
	s.SetUser(model.UserInfo{Username: "alice"})

	require.NoError(t, s.Logout())
	snap := s.Snapshot()
	assert.Equal(t, model.Session{}, snap)
	_, ok := holder.Read()
	assert.False(t, ok)

	require.NoError(t, s.Logout())
	assert.Equal(t, model.Session{}, s.Snapshot())
}

func TestLogoutClearsMemoryEvenIfHolderFails(t *testing.T) {
	holder := &failingHolder{clearErr: errors.New("locked")}
	s := NewSession(holder)
	require.NoError(t, s.SetToken("tok"))

	assert.Error(t, s.Logout())
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.Token())
}

func TestAuthenticatedTracksMostRecentSetTokenOrLogout(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewSession(tokenstore.NewMemoryHolder(""))

	want := false
	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			require.NoError(t, s.SetToken("t"))
			want = true
		} else {
			require.NoError(t, s.Logout())
			want = false
		}
		snap := s.Snapshot()
		require.Equal(t, want, snap.IsAuthenticated, "step %d", i)
		require.Equal(t, snap.IsAuthenticated, snap.Token != "", "step %d", i)
	}
}

func TestSetUserDoesNotAuthenticate(t *testing.T) {
	s := NewSession(tokenstore.NewMemoryHolder(""))
	s.SetUser(model.UserInfo{Username: "bob"})

	assert.False(t, s.IsAuthenticated())
	require.NotNil(t, s.User())
	assert.Equal(t, "bob", s.User().Username)
}

func TestSnapshotUserIsACopy(t *testing.T) {
	s := NewSession(tokenstore.NewMemoryHolder(""))
	s.SetUser(model.UserInfo{Username: "bob"})

	u := s.User()
	u.Username = "mallory"
	assert.Equal(t, "bob", s.User().Username)
}

func TestSessionSubscribersSeeStateAfterMutation(t *testing.T) {
	s := NewSession(tokenstore.NewMemoryHolder(""))

	var seen []model.Session
	unsubscribe := s.Subscribe(func(snap model.Session) {
		assert.Equal(t, snap.IsAuthenticated, s.IsAuthenticated(), "store already updated")
		seen = append(seen, snap)
	})

	require.NoError(t, s.SetToken("tok"))
	s.SetUser(model.UserInfo{Username: "alice"})
	require.NoError(t, s.Logout())
	_ = s.SetToken("")

	require.Len(t, seen, 3)
	assert.True(t, seen[0].IsAuthenticated)
	assert.Equal(t, "alice", seen[1].User.Username)
	assert.False(t, seen[2].IsAuthenticated)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.SetToken("again"))
	assert.Len(t, seen, 3)
}
