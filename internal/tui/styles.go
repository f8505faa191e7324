package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	// Language colors
	LangPython     = lipgloss.Color("#FFE66D") // Yellow
	LangJavaScript = lipgloss.Color("#FFB347") // Orange
	LangCpp        = lipgloss.Color("#4ECDC4") // Teal
	LangJava       = lipgloss.Color("#FF6B6B") // Red
	LangSQL        = lipgloss.Color("#95E1A3") // Green
	LangMarkup     = lipgloss.Color("#C3A6FF") // Purple, html and css

	// Status colors
	OK      = lipgloss.Color("#95E1A3")
	Warning = lipgloss.Color("#FFE66D")
	Danger  = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary    = lipgloss.Color("#4ECDC4")
	Secondary  = lipgloss.Color("#6C757D")
	Background = lipgloss.Color("#1a1a2e")
	Surface    = lipgloss.Color("#16213e")
	Text       = lipgloss.Color("#FFFFFF")
	TextMuted  = lipgloss.Color("#888888")
	Border     = lipgloss.Color("#333333")
	Highlight  = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Snippet list pane
	ListPaneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Preview and detail pane
	PreviewStyle = lipgloss.NewStyle().
			Padding(1, 2)

	// Snippet item
	SnippetItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	SnippetItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(Surface).
					Bold(true)

	// Code block
	CodeStyle = lipgloss.NewStyle().
			Foreground(Text).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 1)

	TagStyle = lipgloss.NewStyle().Foreground(Highlight)

	PublicBadgeStyle  = lipgloss.NewStyle().Foreground(OK).Bold(true)
	PrivateBadgeStyle = lipgloss.NewStyle().Foreground(TextMuted)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ErrorStyle = lipgloss.NewStyle().Foreground(Danger).Bold(true)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Form labels
	LabelStyle        = lipgloss.NewStyle().Foreground(TextMuted).Width(13)
	LabelFocusedStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true).Width(13)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// GetLanguageStyle returns the style for a given language
func GetLanguageStyle(lang string) lipgloss.Style {
	switch lang {
	case "python":
		return lipgloss.NewStyle().Foreground(LangPython)
	case "javascript":
		return lipgloss.NewStyle().Foreground(LangJavaScript)
	case "cpp":
		return lipgloss.NewStyle().Foreground(LangCpp)
	case "java":
		return lipgloss.NewStyle().Foreground(LangJava)
	case "sql":
		return lipgloss.NewStyle().Foreground(LangSQL)
	case "html", "css":
		return lipgloss.NewStyle().Foreground(LangMarkup)
	default:
		return lipgloss.NewStyle().Foreground(TextMuted)
	}
}

// FormatVisibility returns a badge for the public flag
func FormatVisibility(public bool) string {
	if public {
		return PublicBadgeStyle.Render("public")
	}
	return PrivateBadgeStyle.Render("private")
}
