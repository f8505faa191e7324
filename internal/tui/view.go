package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/snipvault/internal/model"
)

const listWidth = 38

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var mainContent string
	switch m.mode {
	case ModeLogin:
		mainContent = m.place(m.renderLogin())
	case ModeHelp:
		mainContent = m.renderHelp()
	case ModeCreate:
		mainContent = m.place(m.renderForm())
	case ModeConfirmDelete:
		mainContent = m.place(m.renderConfirmDelete())
	case ModeDetail:
		mainContent = m.renderDetail()
	default:
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), m.renderPreview())
	}

	// Combine with status bar
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

// place centers a modal above the status bar
func (m Model) place(modal string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderLogin() string {
	content := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("SnipVault") + "\n"
	content += HelpStyle.Render(m.app.API.BaseURL()) + "\n\n"
	content += lipgloss.NewStyle().Bold(true).Render("Login") + "\n\n"

	labels := [2]string{"Username", "Password"}
	for i, in := range m.login.inputs {
		label := LabelStyle
		if i == m.login.focus {
			label = LabelFocusedStyle
		}
		content += label.Render(labels[i]) + in.View() + "\n"
	}

	content += "\n" + HelpStyle.Render("Tab:next  Enter:login  Esc:quit") + "\n"
	content += HelpStyle.Render("No account? Run: snip auth register")
	return ModalStyle.Render(content)
}

func (m Model) renderList() string {
	var s string

	heading := "My Snippets"
	if m.feed == FeedPublic {
		heading = "Public Snippets"
	}
	list := m.visible()

	s += HeaderStyle.Render(fmt.Sprintf("%s (%d)", heading, len(list))) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", listWidth-4)) + "\n"

	if len(list) == 0 {
		if m.feed == FeedMine {
			s += HelpStyle.Render("  No snippets. Press 'a' to add one.")
		} else {
			s += HelpStyle.Render("  No public snippets yet.")
		}
	}

	for i, sn := range list {
		cursor := "  "
		style := SnippetItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = SnippetItemSelectedStyle
		}

		lock := " "
		if sn.IsPublic {
			lock = "•"
		}
		line := fmt.Sprintf("%s%s %-22s", cursor, lock, truncate(sn.Title, 22))
		s += style.Render(line) + " " + GetLanguageStyle(sn.Language).Render(truncate(sn.Language, 6)) + "\n"
	}

	return ListPaneStyle.Width(listWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderPreview() string {
	width := max(20, m.width-listWidth-2)
	sn, ok := m.current()
	if !ok {
		return PreviewStyle.Width(width).Height(m.height - 2).Render(HelpStyle.Render("Nothing selected"))
	}

	maxLines := max(3, m.height-12)
	return PreviewStyle.Width(width).Height(m.height - 2).Render(renderSnippet(sn, width-6, maxLines))
}

func (m Model) renderDetail() string {
	sn := m.app.Snippets.Selected()
	if sn == nil {
		return PreviewStyle.Width(m.width).Height(m.height - 2).Render(HelpStyle.Render("No snippet selected"))
	}

	body := renderSnippet(*sn, m.width-8, max(3, m.height-10))
	body += "\n" + HelpStyle.Render("Esc:back")
	return PreviewStyle.Width(m.width).Height(m.height - 2).Render(body)
}

// renderSnippet renders header, tags and up to maxLines of code
func renderSnippet(sn model.Snippet, width, maxLines int) string {
	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(sn.Title) + "  "
	s += GetLanguageStyle(sn.Language).Render(sn.Language) + "  " + FormatVisibility(sn.IsPublic) + "\n"

	if sn.Description != "" {
		s += sn.Description + "\n"
	}
	if names := sn.TagNames(); len(names) > 0 {
		s += TagStyle.Render("#"+strings.Join(names, " #")) + "\n"
	}

	meta := fmt.Sprintf("#%d  %d views", sn.ID, sn.ViewCount)
	if sn.CreatedAt != nil {
		meta += "  " + sn.CreatedAt.Local().Format("Jan 2, 2006 15:04")
	}
	s += HelpStyle.Render(meta) + "\n\n"

	lines := strings.Split(strings.TrimRight(sn.Code, "\n"), "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}
	for i, l := range lines {
		lines[i] = truncate(l, max(10, width-4))
	}
	s += CodeStyle.Render(strings.Join(lines, "\n"))
	return s
}

func (m Model) renderForm() string {
	f := m.form
	label := func(field int, text string) string {
		if f.focus == field {
			return LabelFocusedStyle.Render(text)
		}
		return LabelStyle.Render(text)
	}

	lang := GetLanguageStyle(f.languageName()).Render(f.languageName())
	if f.focus == fieldLanguage {
		lang = "◀ " + lang + " ▶"
	}

	public := "[ ] public"
	if f.public {
		public = "[x] public"
	}

	content := lipgloss.NewStyle().Bold(true).Render("New Snippet") + "\n\n"
	content += label(fieldTitle, "Title") + f.title.View() + "\n"
	content += label(fieldDescription, "Description") + f.description.View() + "\n"
	content += label(fieldLanguage, "Language") + lang + "\n"
	content += label(fieldTags, "Tags") + f.tags.View() + "\n"
	content += label(fieldPublic, "Visibility") + public + "\n\n"
	content += label(fieldCode, "Code") + "\n" + f.code.View() + "\n\n"
	content += HelpStyle.Render("Tab:next field  ←/→:language  Space:toggle  Ctrl+S:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderConfirmDelete() string {
	sn, _ := m.current()
	content := ErrorStyle.Render("Delete snippet?") + "\n\n"
	content += fmt.Sprintf("\"%s\" (ID: %d)", sn.Title, sn.ID) + "\n\n"
	content += HelpStyle.Render("y:delete  any other key:cancel")
	return ModalStyle.Render(content)
}

func (m Model) renderStatusBar() string {
	help := "enter:open  a:add  d:del  p:mine/public  r:refresh  ?:help  L:logout  q:quit"
	switch m.mode {
	case ModeLogin:
		help = "ctrl+c:quit"
	case ModeCreate:
		help = "ctrl+s:save  esc:cancel"
	case ModeDetail:
		help = "esc:back"
	}

	if m.message != "" {
		if m.isError {
			help = ErrorStyle.Render(m.message)
		} else {
			help = m.message
		}
	}

	// Right aligned user and activity
	right := ""
	if u := m.app.Session.User(); u != nil && u.Username != "" {
		right = "@" + u.Username
	}
	if m.busy {
		right = "Loading... " + right
	}

	if right != "" {
		avail := m.width - lipgloss.Width(help) - lipgloss.Width(right) - 4
		if avail > 0 {
			help += strings.Repeat(" ", avail) + right
		} else {
			help += " " + right
		}
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  g/G    Top / bottom     │
│  Enter  Open snippet     │
│  Esc    Back             │
│                          │
│  Actions                 │
│  ───────                 │
│  a      Add snippet      │
│  d      Delete           │
│  p      Mine / public    │
│  r      Refresh          │
│  L      Logout           │
│                          │
│  Other                   │
│  ─────                   │
│  ?      Toggle help      │
│  q      Quit             │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

// truncate shortens a string to n runes with an ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
