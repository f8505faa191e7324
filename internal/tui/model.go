package tui

import (
	"sync"

	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/config"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeLogin Mode = iota
	ModeNormal
	ModeDetail
	ModeCreate
	ModeConfirmDelete
	ModeHelp
)

// Feed selects which list the dashboard shows
type Feed int

const (
	FeedMine Feed = iota
	FeedPublic
)

// subscriptions holds store unsubscribe funcs. It is shared by every copy
// of the model so Close works on whichever copy the program returns.
type subscriptions struct {
	mu     sync.Mutex
	unsubs []func()
}

func (s *subscriptions) add(unsub func()) {
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsub)
	s.mu.Unlock()
}

func (s *subscriptions) close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, fn := range unsubs {
		fn()
	}
}

// Model is the main TUI model
type Model struct {
	app *app.App
	cfg *config.Config

	storeChan chan struct{} // Signalled by store subscribers, buffered to avoid blocking
	subs      *subscriptions

	// UI state
	width  int
	height int
	mode   Mode
	feed   Feed
	cursor int
	busy   bool

	login loginForm
	form  snippetForm

	message string
	isError bool
}

// NewModel creates a new TUI model bound to the stores of a
func NewModel(a *app.App, cfg *config.Config) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	storeChan := make(chan struct{}, 1)
	notify := func() {
		select {
		case storeChan <- struct{}{}:
		default:
		}
	}

	subs := &subscriptions{}
	subs.add(a.Session.Subscribe(func(model.Session) { notify() }))
	subs.add(a.Snippets.Subscribe(notify))

	m := Model{
		app:       a,
		cfg:       cfg,
		storeChan: storeChan,
		subs:      subs,
		mode:      ModeLogin,
		login:     newLoginForm(),
		form:      newSnippetForm(cfg.DefaultLanguage),
	}
	if a.Session.IsAuthenticated() {
		m.mode = ModeNormal
	}

	logger.Info("TUI model initialized", logger.F("authenticated", m.mode != ModeLogin))
	return m
}

// Close detaches the model from the stores
func (m Model) Close() {
	m.subs.close()
}

// visible returns the list shown for the current feed
func (m Model) visible() []model.Snippet {
	if m.feed == FeedPublic {
		return m.app.Snippets.Public()
	}
	return m.app.Snippets.Snippets()
}

func (m Model) current() (model.Snippet, bool) {
	list := m.visible()
	if m.cursor >= 0 && m.cursor < len(list) {
		return list[m.cursor], true
	}
	return model.Snippet{}, false
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setMessage(msg string) {
	m.message = msg
	m.isError = false
}

func (m *Model) setError(msg string) {
	m.message = msg
	m.isError = true
}
