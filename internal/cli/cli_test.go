package cli

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/existflow/snipvault/internal/fakeapi"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	baseURL string
	dbPath  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("SNIPVAULT_HOME", home)
	t.Setenv("SNIPVAULT_HOST", "")
	t.Setenv("SNIPVAULT_LOG_CONSOLE", "false")

	srv := httptest.NewServer(fakeapi.New("cli-secret", nil).Handler())
	t.Cleanup(srv.Close)

	return &harness{t: t, baseURL: srv.URL + "/api", dbPath: filepath.Join(home, "state.db")}
}

// run executes one snip invocation, like a fresh process sharing the state db
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	return h.exec(h.baseURL, strings.NewReader(stdin), args...)
}

func (h *harness) exec(baseURL string, stdin io.Reader, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd(&options{baseURL: baseURL, dbPath: h.dbPath})

	var out bytes.Buffer
	cmd.SetIn(stdin)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) signIn(username string) {
	h.t.Helper()
	h.mustRun(username+"\n"+username+"@example.com\npw\npw\n", "auth", "register")
	h.mustRun("pw\n", "auth", "login", "-u", username)
}

func TestAuthLifecycle(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "auth", "status")
	assert.Contains(t, out, "Not logged in")

	out = h.mustRun("alice\nalice@example.com\npw\npw\n", "auth", "register")
	assert.Contains(t, out, "Account created")

	_, err := h.run("wrong\n", "auth", "login", "-u", "alice")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	out = h.mustRun("alice\npw\n", "auth", "login")
	assert.Contains(t, out, "Logged in as alice")

	// The token survives across invocations
	out = h.mustRun("", "auth", "status")
	assert.Contains(t, out, "✓ Logged in")
	assert.Contains(t, out, h.baseURL)

	out = h.mustRun("", "auth", "whoami")
	assert.Contains(t, out, "alice@example.com")

	out = h.mustRun("", "auth", "logout")
	assert.Contains(t, out, "Logged out")

	out = h.mustRun("", "auth", "whoami")
	assert.Contains(t, out, "Not logged in")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("bob\nbob@example.com\none\ntwo\n", "auth", "register")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
}

func TestRegisterDuplicateShowsServerDetail(t *testing.T) {
	h := newHarness(t)
	h.mustRun("bob\nbob@example.com\npw\npw\n", "auth", "register")

	_, err := h.run("bob\nother@example.com\npw\npw\n", "auth", "register")
	require.Error(t, err)
	assert.Equal(t, "Username already registered", err.Error())
}

func TestSnippetCommands(t *testing.T) {
	h := newHarness(t)
	h.signIn("alice")

	out := h.mustRun("", "list")
	assert.Contains(t, out, "No snippets found")

	out = h.mustRun("", "add", "--title", "Fizzbuzz", "--code", "print(1)", "--tags", "a, b ,c", "--public")
	assert.Contains(t, out, `Added #1: "Fizzbuzz" (python)`)

	out = h.mustRun("SELECT 1;\n", "add", "--title", "Query", "--language", "sql")
	assert.Contains(t, out, "Added #2")

	out = h.mustRun("", "ls")
	assert.Contains(t, out, "My Snippets (2)")
	assert.Contains(t, out, "Fizzbuzz")
	assert.Contains(t, out, "#a #b #c")

	out = h.mustRun("", "show", "2", "--raw")
	assert.Equal(t, "SELECT 1;\n", out)

	out = h.mustRun("", "edit", "1", "--title", "FizzBuzz v2", "--private")
	assert.Contains(t, out, `Updated #1: "FizzBuzz v2"`)

	out = h.mustRun("", "show", "1")
	assert.Contains(t, out, "FizzBuzz v2")
	assert.Contains(t, out, "private")

	out = h.mustRun("", "tags")
	assert.Contains(t, out, "#a")

	out = h.mustRun("n\n", "delete", "2")
	assert.Contains(t, out, "Cancelled.")

	out = h.mustRun("y\n", "rm", "2")
	assert.Contains(t, out, `Deleted: "Query"`)

	out = h.mustRun("", "delete", "1", "--yes")
	assert.Contains(t, out, "Deleted")

	out = h.mustRun("", "list")
	assert.Contains(t, out, "No snippets found")
}

func TestPublicFeedShowsOtherUsers(t *testing.T) {
	h := newHarness(t)
	h.signIn("alice")
	h.mustRun("", "add", "--title", "Shared", "--code", "x", "--public")
	h.mustRun("", "add", "--title", "Secret", "--code", "x")

	h.mustRun("", "auth", "logout")
	out := h.mustRun("", "public")
	assert.Contains(t, out, "Shared")
	assert.NotContains(t, out, "Secret")
}

func TestCommandsShowPageMessages(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "list")
	require.Error(t, err)
	assert.Equal(t, "Not authenticated", err.Error())

	h.signIn("alice")

	_, err = h.run("", "add", "--code", "x")
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())

	_, err = h.run("", "show", "99")
	require.Error(t, err)
	assert.Equal(t, "Snippet not found", err.Error())

	_, err = h.run("", "show", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snippet id")

	out, err := h.run("", "add", "--title", "t", "--code", "x", "--language", "cobol")
	require.NoError(t, err, out)
	assert.Contains(t, out, "(cobol)")

	_, err = h.run("", "edit", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")
}

func TestConfigCommandPersists(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "config", "--host", "snippets.lan", "--confirm-delete=false")
	assert.Contains(t, out, "Settings saved")
	assert.Contains(t, out, "http://snippets.lan:8000/api")

	out = h.mustRun("", "config")
	assert.Contains(t, out, "Confirm delete:   false")

	out = h.mustRun("", "config", "--default-language", "go")
	assert.Contains(t, out, "Default language: go")
}

func TestConfigSaveLeavesEnvHostOutOfFile(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SNIPVAULT_HOST", "temporary.lan")

	out := h.mustRun("", "config", "--confirm-delete=false")
	assert.Contains(t, out, "http://temporary.lan:8000/api")

	t.Setenv("SNIPVAULT_HOST", "")
	out = h.mustRun("", "config")
	assert.Contains(t, out, "http://localhost:8000/api")
	assert.Contains(t, out, "Confirm delete:   false")
}

func TestAddAcceptsLanguagesOutsideEditorList(t *testing.T) {
	h := newHarness(t)
	h.signIn("alice")

	out := h.mustRun("", "add", "--title", "hello", "--code", "fmt.Println(1)", "--language", "go")
	assert.Contains(t, out, `✓ Added #1: "hello" (go)`)
	assert.Contains(t, out, "not one of the editor languages")

	out = h.mustRun("", "show", "1")
	assert.Contains(t, out, "go")

	h.mustRun("", "config", "--default-language", "rust")
	out = h.mustRun("", "add", "--title", "crab", "--code", "fn main() {}")
	assert.Contains(t, out, `"crab" (rust)`)

	out = h.mustRun("", "edit", "1", "--language", "golang")
	assert.Contains(t, out, "Updated #1")
}

// untouchedReader fails the test when anything reads from it
type untouchedReader struct{ t *testing.T }

func (r untouchedReader) Read([]byte) (int, error) {
	r.t.Error("stdin was read")
	return 0, io.EOF
}

func TestAddChecksTitleBeforeReadingStdin(t *testing.T) {
	h := newHarness(t)
	h.signIn("alice")

	_, err := h.exec(h.baseURL, untouchedReader{t}, "add")
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())

	_, err = h.exec(h.baseURL, untouchedReader{t}, "add", "--title", "   ", "--file", "-")
	require.Error(t, err)
	assert.Equal(t, "title is required", err.Error())
}

func TestStatusListsOtherSignedInServers(t *testing.T) {
	h := newHarness(t)
	h.signIn("alice")

	other := "http://other.lan:8000/api"
	out, err := h.exec(other, strings.NewReader(""), "auth", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Server:    "+other)
	assert.Contains(t, out, "Not logged in")
	assert.Contains(t, out, "Also signed in to: "+h.baseURL)

	out = h.mustRun("", "auth", "status")
	assert.NotContains(t, out, "Also signed in to")

	h.mustRun("", "auth", "logout")
	out, err = h.exec(other, strings.NewReader(""), "auth", "status")
	require.NoError(t, err, out)
	assert.NotContains(t, out, "Also signed in to")
}

func TestBuildPatch(t *testing.T) {
	newEdit := func(args ...string) *cobra.Command {
		cmd := newEditCmd(&options{})
		require.NoError(t, cmd.ParseFlags(args))
		return cmd
	}

	patch, err := buildPatch(newEdit("--tags", "go, , db", "--public"))
	require.NoError(t, err)
	require.NotNil(t, patch.Tags)
	assert.Equal(t, []string{"go", "db"}, *patch.Tags)
	require.NotNil(t, patch.IsPublic)
	assert.True(t, *patch.IsPublic)
	assert.Nil(t, patch.Title)

	patch, err = buildPatch(newEdit("--tags", ""))
	require.NoError(t, err)
	require.NotNil(t, patch.Tags)
	assert.Empty(t, *patch.Tags)

	patch, err = buildPatch(newEdit("--private"))
	require.NoError(t, err)
	assert.False(t, *patch.IsPublic)

	_, err = buildPatch(newEdit())
	assert.Error(t, err)
}

func TestReadCodeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')\n"), 0644))

	cmd := newAddCmd(&options{})
	code, err := readCode(cmd, path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", code)

	assert.Equal(t, "python", languageForFile(path, "sql"))
	assert.Equal(t, "cpp", languageForFile("x.HPP", "sql"))
	assert.Equal(t, "sql", languageForFile("notes.txt", "sql"))
	assert.Equal(t, "python", languageForFile("", ""))
}

func TestParseSnippetID(t *testing.T) {
	id, err := parseSnippetID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-1", "x", ""} {
		_, err := parseSnippetID(raw)
		assert.Error(t, err, raw)
	}
}
