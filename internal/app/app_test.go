package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/existflow/snipvault/internal/api"
	"github.com/existflow/snipvault/internal/fakeapi"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
	"github.com/existflow/snipvault/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, h http.Handler) (*App, *tokenstore.MemoryHolder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	holder := tokenstore.NewMemoryHolder("")
	return New(srv.URL+"/api", holder, api.WithLogger(logger.Nop())), holder
}

func newFakeApp(t *testing.T) (*App, *tokenstore.MemoryHolder) {
	t.Helper()
	return newApp(t, fakeapi.New("test-secret", nil).Handler())
}

func signedIn(t *testing.T, username string) *App {
	t.Helper()
	a, _ := newFakeApp(t)
	ctx := context.Background()
	require.NoError(t, a.Register(ctx, username, username+"@example.com", "pw"))
	require.NoError(t, a.Login(ctx, username, "pw"))
	return a
}

func TestLoginStoresTokenAndUsername(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok123", "token_type": "bearer"})
	})
	a, holder := newApp(t, mux)

	require.NoError(t, a.Login(context.Background(), "alice", "pw"))

	snap := a.Session.Snapshot()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "tok123", snap.Token)
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice", snap.User.Username)

	stored, ok := holder.Read()
	assert.True(t, ok)
	assert.Equal(t, "tok123", stored)
}

func TestLoginFailureLeavesSessionAlone(t *testing.T) {
	a, holder := newFakeApp(t)

	err := a.Login(context.Background(), "ghost", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", ErrorMessage(err, MsgLoginFailed))

	assert.False(t, a.Session.IsAuthenticated())
	_, ok := holder.Read()
	assert.False(t, ok)
}

func TestFormValidationSendsNoRequest(t *testing.T) {
	var hits atomic.Int32
	a, _ := newApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	ctx := context.Background()

	err := a.Login(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, "username is required", ErrorMessage(err, MsgLoginFailed))

	err = a.Register(ctx, "bob", " ", "pw")
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = a.CreateSnippet(ctx, SnippetForm{Title: "t"})
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Equal(t, "code is required", ErrorMessage(err, MsgCreateFailed))

	assert.Zero(t, hits.Load())
}

func TestCreateSnippetParsesTags(t *testing.T) {
	a := signedIn(t, "alice")

	created, err := a.CreateSnippet(context.Background(), SnippetForm{
		Title: "hello",
		Code:  "print(1)",
		Tags:  "a, b ,c",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, created.TagNames())
	assert.Equal(t, model.DefaultLanguage, created.Language)
	require.Equal(t, 1, a.Snippets.Len())
	assert.Equal(t, created.ID, a.Snippets.Snippets()[0].ID)
}

func TestCreateFailureKeepsCollection(t *testing.T) {
	a, _ := newApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := a.CreateSnippet(context.Background(), SnippetForm{Title: "t", Code: "c"})
	require.Error(t, err)
	assert.Equal(t, MsgCreateFailed, ErrorMessage(err, MsgCreateFailed))
	assert.Zero(t, a.Snippets.Len())
}

func TestDashboardRoundTrip(t *testing.T) {
	a := signedIn(t, "alice")
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := a.CreateSnippet(ctx, SnippetForm{Title: title, Code: "x", Language: "sql"})
		require.NoError(t, err)
	}

	a.Snippets.Reset()
	require.NoError(t, a.LoadDashboard(ctx))
	require.Equal(t, 3, a.Snippets.Len())

	second := a.Snippets.Snippets()[1]
	title := "renamed"
	updated, err := a.UpdateSnippet(ctx, second.ID, model.SnippetPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, "renamed", a.Snippets.Snippets()[1].Title)

	opened, err := a.OpenSnippet(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, a.Snippets.Selected())
	assert.Equal(t, opened.ID, a.Snippets.Selected().ID)

	require.NoError(t, a.DeleteSnippet(ctx, second.ID))
	assert.Equal(t, 2, a.Snippets.Len())
	assert.Nil(t, a.Snippets.Selected())
	_, ok := a.Snippets.Find(second.ID)
	assert.False(t, ok)
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	a := signedIn(t, "alice")
	ctx := context.Background()

	s, err := a.CreateSnippet(ctx, SnippetForm{Title: "keep", Code: "x"})
	require.NoError(t, err)

	err = a.DeleteSnippet(ctx, s.ID+100)
	require.Error(t, err)
	assert.Equal(t, "Snippet not found", ErrorMessage(err, MsgDeleteFailed))
	assert.Equal(t, 1, a.Snippets.Len())
}

func TestLoadDashboardUnauthenticated(t *testing.T) {
	a, _ := newFakeApp(t)

	err := a.LoadDashboard(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Zero(t, a.Snippets.Len())
}

func TestPublicFeedAndTags(t *testing.T) {
	a := signedIn(t, "alice")
	ctx := context.Background()

	_, err := a.CreateSnippet(ctx, SnippetForm{Title: "shared", Code: "x", Tags: "go", IsPublic: true})
	require.NoError(t, err)
	_, err = a.CreateSnippet(ctx, SnippetForm{Title: "private", Code: "x", Tags: "go, db"})
	require.NoError(t, err)

	require.NoError(t, a.LoadPublic(ctx))
	public := a.Snippets.Public()
	require.Len(t, public, 1)
	assert.Equal(t, "shared", public[0].Title)

	tags, err := a.Tags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestWhoAmIAndLogout(t *testing.T) {
	a := signedIn(t, "alice")
	ctx := context.Background()

	user, err := a.WhoAmI(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice@example.com", a.Session.User().Email)

	_, err = a.CreateSnippet(ctx, SnippetForm{Title: "t", Code: "c"})
	require.NoError(t, err)

	require.NoError(t, a.Logout())
	assert.False(t, a.Session.IsAuthenticated())
	assert.Nil(t, a.Session.User())
	assert.Zero(t, a.Snippets.Len())
	_, ok := a.Holder.Read()
	assert.False(t, ok)

	_, err = a.WhoAmI(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestErrorMessageNil(t *testing.T) {
	assert.Empty(t, ErrorMessage(nil, "x"))
}

func TestResponsesAfterLogoutAreDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{}, 1)
	mux := http.NewServeMux()
	slow := func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]model.Snippet{{ID: 1, Title: "private", Code: "x", Language: "python"}})
	}
	mux.HandleFunc("GET /api/snippets", slow)
	mux.HandleFunc("GET /api/snippets/public", slow)
	a, _ := newApp(t, mux)
	require.NoError(t, a.Session.SetToken("tok"))

	for _, load := range []func(context.Context) error{a.LoadDashboard, a.LoadPublic} {
		done := make(chan error, 1)
		go func() {
			done <- load(context.Background())
		}()

		<-started
		require.NoError(t, a.Logout())
		release <- struct{}{}

		err := <-done
		assert.ErrorIs(t, err, ErrSessionEnded)
		assert.False(t, a.Session.IsAuthenticated())
		assert.Equal(t, 0, a.Snippets.Len())
		assert.Empty(t, a.Snippets.Public())

		require.NoError(t, a.Session.SetToken("tok"))
	}
}

func TestLoadAfterFreshLoginIsApplied(t *testing.T) {
	a := signedIn(t, "alice")
	_, err := a.CreateSnippet(context.Background(), SnippetForm{Title: "one", Code: "x"})
	require.NoError(t, err)

	require.NoError(t, a.Logout())
	require.NoError(t, a.Login(context.Background(), "alice", "pw"))

	require.NoError(t, a.LoadDashboard(context.Background()))
	assert.Equal(t, 1, a.Snippets.Len())
}
