package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/model"
)

// loginForm is the username/password form
type loginForm struct {
	inputs [2]textinput.Model
	focus  int
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{inputs: [2]textinput.Model{username, password}}
}

func (f *loginForm) next() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f loginForm) values() (username, password string) {
	return f.inputs[0].Value(), f.inputs[1].Value()
}

func (f *loginForm) reset() {
	*f = newLoginForm()
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// Snippet form fields in tab order
const (
	fieldTitle = iota
	fieldDescription
	fieldLanguage
	fieldTags
	fieldPublic
	fieldCode
	fieldCount
)

// snippetForm is the create-snippet form
type snippetForm struct {
	title       textinput.Model
	description textinput.Model
	tags        textinput.Model
	code        textarea.Model
	language    int // index into model.Languages
	public      bool
	focus       int

	defaultLanguage string
}

func newSnippetForm(defaultLanguage string) snippetForm {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Width = 50

	description := textinput.New()
	description.Placeholder = "Description (optional)"
	description.CharLimit = 500
	description.Width = 50

	tags := textinput.New()
	tags.Placeholder = "Tags, comma separated"
	tags.CharLimit = 200
	tags.Width = 50

	code := textarea.New()
	code.Placeholder = "Paste your code here"
	code.ShowLineNumbers = true
	code.CharLimit = 0
	code.SetWidth(60)
	code.SetHeight(8)

	f := snippetForm{
		title:           title,
		description:     description,
		tags:            tags,
		code:            code,
		defaultLanguage: defaultLanguage,
	}
	f.language = languageIndex(defaultLanguage)
	f.focusField(fieldTitle)
	return f
}

func languageIndex(lang string) int {
	for i, l := range model.Languages {
		if l == lang {
			return i
		}
	}
	return 0
}

func (f *snippetForm) focusField(field int) {
	f.title.Blur()
	f.description.Blur()
	f.tags.Blur()
	f.code.Blur()

	f.focus = (field + fieldCount) % fieldCount
	switch f.focus {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	case fieldTags:
		f.tags.Focus()
	case fieldCode:
		f.code.Focus()
	}
}

func (f *snippetForm) cycleLanguage(delta int) {
	n := len(model.Languages)
	f.language = ((f.language+delta)%n + n) % n
}

func (f snippetForm) languageName() string {
	return model.Languages[f.language]
}

// value converts the form to the flow input
func (f snippetForm) value() app.SnippetForm {
	return app.SnippetForm{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Code:        f.code.Value(),
		Language:    f.languageName(),
		Tags:        f.tags.Value(),
		IsPublic:    f.public,
	}
}

func (f *snippetForm) reset() {
	*f = newSnippetForm(f.defaultLanguage)
}

// update routes a key to the focused field
func (f snippetForm) update(msg tea.KeyMsg) (snippetForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldTags:
		f.tags, cmd = f.tags.Update(msg)
	case fieldCode:
		f.code, cmd = f.code.Update(msg)
	case fieldLanguage:
		switch msg.String() {
		case "left", "h":
			f.cycleLanguage(-1)
		case "right", "l", " ":
			f.cycleLanguage(1)
		}
	case fieldPublic:
		switch msg.String() {
		case " ", "enter", "x":
			f.public = !f.public
		}
	}
	return f, cmd
}
