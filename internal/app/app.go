// Package app is the composition root: it owns the token holder, both
// stores and the API client, and implements the user-facing flows that the
// CLI and TUI call into. Successful API results are written into the
// stores; failures leave the stores untouched.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/existflow/snipvault/internal/api"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
	"github.com/existflow/snipvault/internal/store"
	"github.com/existflow/snipvault/internal/tokenstore"
)

// Fallback messages shown when the server gives no detail
const (
	MsgLoginFailed    = "Login failed"
	MsgRegisterFailed = "Registration failed"
	MsgLoadFailed     = "Failed to load snippets"
	MsgCreateFailed   = "Failed to create snippet"
	MsgUpdateFailed   = "Failed to update snippet"
	MsgDeleteFailed   = "Failed to delete snippet"
	MsgOpenFailed     = "Failed to load snippet"
	MsgPublicFailed   = "Failed to load public snippets"
	MsgTagsFailed     = "Failed to load tags"
	MsgWhoAmIFailed   = "Failed to load current user"
)

// ErrMissingField reports a required form field left empty. Such errors
// are caught before any request is sent.
var ErrMissingField = errors.New("required field missing")

// FieldError names the empty required field
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return e.Field + " is required"
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

func requireField(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field}
	}
	return nil
}

// App wires the stores to the API client
type App struct {
	Holder   tokenstore.Holder
	Session  *store.Session
	Snippets *store.Snippets
	API      *api.Client

	log *logger.Logger

	// gen counts logouts; a response started under an older value is dropped
	gen atomic.Uint64
}

// ErrSessionEnded is returned when the user logged out while a request was
// in flight. Its response was not applied to the stores.
var ErrSessionEnded = errors.New("session ended")

// ended reports whether Logout ran since gen was read
func (a *App) ended(gen uint64, op string) bool {
	if a.gen.Load() == gen {
		return false
	}
	a.log.Debug("Dropped response from ended session", logger.F("op", op))
	return true
}

// New builds an App talking to the API at baseURL. The session is
// initialized from holder immediately.
func New(baseURL string, holder tokenstore.Holder, opts ...api.Option) *App {
	return &App{
		Holder:   holder,
		Session:  store.NewSession(holder),
		Snippets: store.NewSnippets(),
		API:      api.NewClient(baseURL, holder, opts...),
		log:      logger.WithFields(logger.F("component", "app")),
	}
}

// ErrorMessage converts err into the message shown to the user: the
// validation text for form errors, the server detail when there is one,
// fallback otherwise.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	if errors.Is(err, store.ErrEmptyToken) {
		return fallback
	}
	return api.Message(err, fallback)
}

// Login authenticates and records the token and username
func (a *App) Login(ctx context.Context, username, password string) error {
	if err := requireField("username", username); err != nil {
		return err
	}
	if err := requireField("password", password); err != nil {
		return err
	}

	resp, err := a.API.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.Session.SetToken(resp.AccessToken); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	a.Session.SetUser(model.UserInfo{Username: username})

	a.log.Info("Logged in", logger.F("username", username))
	return nil
}

// Register creates an account; the caller logs in separately
func (a *App) Register(ctx context.Context, username, email, password string) error {
	for _, f := range [][2]string{{"username", username}, {"email", email}, {"password", password}} {
		if err := requireField(f[0], f[1]); err != nil {
			return err
		}
	}
	if err := a.API.Register(ctx, username, email, password); err != nil {
		return err
	}
	a.log.Info("Registered", logger.F("username", username))
	return nil
}

// Logout clears the session and every cached snippet
func (a *App) Logout() error {
	a.gen.Add(1)
	err := a.Session.Logout()
	a.Snippets.Reset()
	return err
}

// WhoAmI asks the backend for the current user and records it
func (a *App) WhoAmI(ctx context.Context) (model.UserInfo, error) {
	gen := a.gen.Load()
	user, err := a.API.CurrentUser(ctx)
	if err != nil {
		return model.UserInfo{}, err
	}
	if a.ended(gen, "whoami") {
		return model.UserInfo{}, ErrSessionEnded
	}
	a.Session.SetUser(user)
	return user, nil
}

// LoadDashboard replaces the collection with the server's list
func (a *App) LoadDashboard(ctx context.Context) error {
	gen := a.gen.Load()
	list, err := a.API.ListSnippets(ctx)
	if err != nil {
		a.log.Warn(MsgLoadFailed, logger.F("error", err))
		return err
	}
	if a.ended(gen, "list") {
		return ErrSessionEnded
	}
	a.Snippets.ReplaceAll(list)
	return nil
}

// LoadPublic replaces the public feed
func (a *App) LoadPublic(ctx context.Context) error {
	gen := a.gen.Load()
	list, err := a.API.ListPublicSnippets(ctx)
	if err != nil {
		a.log.Warn(MsgPublicFailed, logger.F("error", err))
		return err
	}
	if a.ended(gen, "public") {
		return ErrSessionEnded
	}
	a.Snippets.ReplacePublic(list)
	return nil
}

// OpenSnippet fetches a snippet and makes it the selection
func (a *App) OpenSnippet(ctx context.Context, id int64) (model.Snippet, error) {
	gen := a.gen.Load()
	s, err := a.API.GetSnippet(ctx, id)
	if err != nil {
		return model.Snippet{}, err
	}
	if a.ended(gen, "open") {
		return model.Snippet{}, ErrSessionEnded
	}
	a.Snippets.SetSelected(&s)
	return s, nil
}

// SnippetForm holds the raw create-form fields. Tags is the comma separated
// text the user typed.
type SnippetForm struct {
	Title       string
	Description string
	Code        string
	Language    string
	Tags        string
	IsPublic    bool
}

// Input validates the form and converts it to an API payload
func (f SnippetForm) Input() (model.SnippetInput, error) {
	if err := requireField("title", f.Title); err != nil {
		return model.SnippetInput{}, err
	}
	if err := requireField("code", f.Code); err != nil {
		return model.SnippetInput{}, err
	}
	lang := f.Language
	if lang == "" {
		lang = model.DefaultLanguage
	}
	return model.SnippetInput{
		Title:       f.Title,
		Description: f.Description,
		Code:        f.Code,
		Language:    lang,
		IsPublic:    f.IsPublic,
		Tags:        model.ParseTags(f.Tags),
	}, nil
}

// CreateSnippet submits the form and appends the server's snippet
func (a *App) CreateSnippet(ctx context.Context, form SnippetForm) (model.Snippet, error) {
	in, err := form.Input()
	if err != nil {
		return model.Snippet{}, err
	}

	gen := a.gen.Load()
	created, err := a.API.CreateSnippet(ctx, in)
	if err != nil {
		return model.Snippet{}, err
	}
	if a.ended(gen, "create") {
		return model.Snippet{}, ErrSessionEnded
	}
	a.Snippets.Add(created)

	a.log.Info("Snippet created", logger.F("id", created.ID), logger.F("tags", len(created.Tags)))
	return created, nil
}

// UpdateSnippet applies patch and replaces the stored entry
func (a *App) UpdateSnippet(ctx context.Context, id int64, patch model.SnippetPatch) (model.Snippet, error) {
	gen := a.gen.Load()
	updated, err := a.API.UpdateSnippet(ctx, id, patch)
	if err != nil {
		return model.Snippet{}, err
	}
	if a.ended(gen, "update") {
		return model.Snippet{}, ErrSessionEnded
	}
	a.Snippets.UpdateByID(id, updated)
	return updated, nil
}

// DeleteSnippet deletes on the server, then locally
func (a *App) DeleteSnippet(ctx context.Context, id int64) error {
	if err := a.API.DeleteSnippet(ctx, id); err != nil {
		return err
	}
	a.Snippets.DeleteByID(id)
	a.log.Info("Snippet deleted", logger.F("id", id))
	return nil
}

// Tags lists every known tag
func (a *App) Tags(ctx context.Context) ([]model.Tag, error) {
	return a.API.ListTags(ctx)
}
