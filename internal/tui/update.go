package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/model"
)

// storeChangedMsg is sent when either store notifies its subscribers
type storeChangedMsg struct{}

// Results of the API flows, delivered back to Update
type (
	loginResultMsg struct {
		username string
		err      error
	}
	dashboardMsg struct{ err error }
	publicMsg    struct{ err error }
	openedMsg    struct{ err error }
	createdMsg   struct {
		snippet model.Snippet
		err     error
	}
	deletedMsg struct {
		title string
		err   error
	}
)

// Init starts listening for store changes and loads the dashboard when a
// token is already held
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForStoreChange(), textinput.Blink}
	if m.mode != ModeLogin {
		cmds = append(cmds, m.loadDashboardCmd())
	}
	return tea.Batch(cmds...)
}

// waitForStoreChange listens for store notifications
func (m Model) waitForStoreChange() tea.Cmd {
	ch := m.storeChan
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		err := a.Login(context.Background(), username, password)
		return loginResultMsg{username: username, err: err}
	}
}

func (m Model) loadDashboardCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return dashboardMsg{err: a.LoadDashboard(context.Background())}
	}
}

func (m Model) loadPublicCmd() tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return publicMsg{err: a.LoadPublic(context.Background())}
	}
}

func (m Model) openCmd(id int64) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		_, err := a.OpenSnippet(context.Background(), id)
		return openedMsg{err: err}
	}
}

func (m Model) createCmd(form app.SnippetForm) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		s, err := a.CreateSnippet(context.Background(), form)
		return createdMsg{snippet: s, err: err}
	}
}

func (m Model) deleteCmd(s model.Snippet) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		return deletedMsg{title: s.Title, err: a.DeleteSnippet(context.Background(), s.ID)}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case storeChangedMsg:
		m.clampCursor()
		if !m.app.Session.IsAuthenticated() && m.mode != ModeLogin {
			m.mode = ModeLogin
			m.login.reset()
		}
		return m, m.waitForStoreChange()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.code.SetWidth(min(80, max(20, msg.Width-16)))
		return m, nil

	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(app.ErrorMessage(msg.err, app.MsgLoginFailed))
			return m, nil
		}
		m.mode = ModeNormal
		m.feed = FeedMine
		m.cursor = 0
		m.login.reset()
		m.setMessage(fmt.Sprintf("Welcome, %s", msg.username))
		return m, m.loadDashboardCmd()

	case dashboardMsg:
		m.busy = false
		if msg.err != nil && !errors.Is(msg.err, app.ErrSessionEnded) {
			m.setError(app.ErrorMessage(msg.err, app.MsgLoadFailed))
		}
		m.clampCursor()
		return m, nil

	case publicMsg:
		m.busy = false
		if msg.err != nil && !errors.Is(msg.err, app.ErrSessionEnded) {
			m.setError(app.ErrorMessage(msg.err, app.MsgPublicFailed))
		}
		m.clampCursor()
		return m, nil

	case openedMsg:
		m.busy = false
		if errors.Is(msg.err, app.ErrSessionEnded) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(app.ErrorMessage(msg.err, app.MsgOpenFailed))
			return m, nil
		}
		m.mode = ModeDetail
		return m, nil

	case createdMsg:
		m.busy = false
		if errors.Is(msg.err, app.ErrSessionEnded) {
			return m, nil
		}
		if msg.err != nil {
			m.setError(app.ErrorMessage(msg.err, app.MsgCreateFailed))
			return m, nil
		}
		m.mode = ModeNormal
		m.feed = FeedMine
		m.cursor = m.app.Snippets.Len() - 1
		m.form.reset()
		m.setMessage(fmt.Sprintf("Added: %s", msg.snippet.Title))
		return m, nil

	case deletedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError(app.ErrorMessage(msg.err, app.MsgDeleteFailed))
			return m, nil
		}
		m.clampCursor()
		m.setMessage(fmt.Sprintf("Deleted: %s", msg.title))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Handle mode-specific input
		switch m.mode {
		case ModeLogin:
			return m.updateLogin(msg)
		case ModeCreate:
			return m.updateForm(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeDetail:
			return m.updateDetail(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses on the dashboard
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Top):
		m.cursor = 0

	case key.Matches(msg, keys.Bottom):
		m.cursor = max(0, len(m.visible())-1)

	case key.Matches(msg, keys.Enter):
		if s, ok := m.current(); ok && !m.busy {
			m.busy = true
			return m, m.openCmd(s.ID)
		}

	case key.Matches(msg, keys.Add):
		m.form.reset()
		m.mode = ModeCreate
		m.setMessage("")
		return m, textinput.Blink

	case key.Matches(msg, keys.Delete):
		if m.feed != FeedMine {
			m.setError("Only your own snippets can be deleted")
			return m, nil
		}
		if _, ok := m.current(); ok {
			m.mode = ModeConfirmDelete
		}

	case key.Matches(msg, keys.Public):
		m.cursor = 0
		if m.feed == FeedMine {
			m.feed = FeedPublic
			m.busy = true
			return m, m.loadPublicCmd()
		}
		m.feed = FeedMine
		m.clampCursor()

	case key.Matches(msg, keys.Refresh):
		m.busy = true
		m.setMessage("Refreshing...")
		if m.feed == FeedPublic {
			return m, m.loadPublicCmd()
		}
		return m, m.loadDashboardCmd()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Logout):
		m.handleLogout()
	}

	return m, nil
}

func (m *Model) handleLogout() {
	if err := m.app.Logout(); err != nil {
		logger.Warn("Logout could not clear stored token", logger.F("error", err))
		m.setError(fmt.Sprintf("Logout error: %v", err))
	} else {
		m.setMessage("Logged out successfully")
	}
	m.mode = ModeLogin
	m.feed = FeedMine
	m.cursor = 0
	m.login.reset()
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.ShiftTab):
		m.login.next()
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.login.focus == 0 {
			m.login.next()
			return m, nil
		}
		if m.busy {
			return m, nil
		}
		username, password := m.login.values()
		m.busy = true
		m.setMessage("Logging in...")
		return m, m.loginCmd(username, password)

	case key.Matches(msg, keys.Escape):
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.setMessage("")
		return m, nil

	case key.Matches(msg, keys.Tab):
		m.form.focusField(m.form.focus + 1)
		return m, nil

	case key.Matches(msg, keys.ShiftTab):
		m.form.focusField(m.form.focus - 1)
		return m, nil

	case key.Matches(msg, keys.Submit):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.createCmd(m.form.value())
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	s, ok := m.current()
	if !ok || !key.Matches(msg, keys.Confirm) {
		m.setMessage("Cancelled")
		return m, nil
	}
	m.busy = true
	return m, m.deleteCmd(s)
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape), msg.String() == "backspace", msg.String() == "q":
		m.mode = ModeNormal
		m.app.Snippets.SetSelected(nil)
	}
	return m, nil
}
