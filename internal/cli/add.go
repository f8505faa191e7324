package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/model"
	"github.com/spf13/cobra"
)

// extLanguages maps file extensions to the languages the server knows
var extLanguages = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".mjs":  "javascript",
	".cpp":  "cpp",
	".cc":   "cpp",
	".hpp":  "cpp",
	".java": "java",
	".sql":  "sql",
	".html": "html",
	".htm":  "html",
	".css":  "css",
}

func newAddCmd(o *options) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new snippet",
		Long: `Create a new snippet. The code is read from --code, from --file, or
from standard input.

Examples:
  snip add --title "Fizzbuzz" --file fizzbuzz.py --tags "interview, loops"
  cat query.sql | snip add --title "Top users" --language sql --public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runAdd(cmd)
		},
	}

	addCmd.Flags().StringP("title", "t", "", "Snippet title (required)")
	addCmd.Flags().StringP("description", "d", "", "Short description")
	addCmd.Flags().StringP("language", "l", "", "Language ("+strings.Join(model.Languages, ", ")+")")
	addCmd.Flags().String("tags", "", "Comma separated tags, e.g. \"go, http\"")
	addCmd.Flags().Bool("public", false, "Make the snippet visible to everyone")
	addCmd.Flags().StringP("file", "f", "", "Read code from file ('-' for stdin)")
	addCmd.Flags().String("code", "", "Inline code")
	return addCmd
}

func (o *options) runAdd(cmd *cobra.Command) error {
	flags := cmd.Flags()
	title, _ := flags.GetString("title")
	description, _ := flags.GetString("description")
	language, _ := flags.GetString("language")
	tags, _ := flags.GetString("tags")
	public, _ := flags.GetBool("public")
	file, _ := flags.GetString("file")

	if strings.TrimSpace(title) == "" {
		return &app.FieldError{Field: "title"}
	}

	code, err := readCode(cmd, file)
	if err != nil {
		return err
	}

	if language == "" {
		language = languageForFile(file, o.cfg.DefaultLanguage)
	}
	warnLanguage(cmd, language)

	a, closeApp, err := o.openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	created, err := a.CreateSnippet(context.Background(), app.SnippetForm{
		Title:       title,
		Description: description,
		Code:        code,
		Language:    language,
		Tags:        tags,
		IsPublic:    public,
	})
	if err != nil {
		return errors.New(app.ErrorMessage(err, app.MsgCreateFailed))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added #%d: \"%s\" (%s)\n", created.ID, created.Title, created.Language)
	return nil
}

func newEditCmd(o *options) *cobra.Command {
	editCmd := &cobra.Command{
		Use:   "edit [snippet-id]",
		Short: "Update a snippet",
		Long: `Update the fields given as flags; everything else is left alone.

Examples:
  snip edit 12 --title "Better title"
  snip edit 12 --tags "" --private
  snip edit 12 --file fizzbuzz.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSnippetID(args[0])
			if err != nil {
				return err
			}
			patch, err := buildPatch(cmd)
			if err != nil {
				return err
			}

			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			updated, err := a.UpdateSnippet(context.Background(), id, patch)
			if err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgUpdateFailed))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated #%d: \"%s\"\n", updated.ID, updated.Title)
			return nil
		},
	}

	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().StringP("language", "l", "", "New language")
	editCmd.Flags().String("tags", "", "Replace tags (comma separated, empty clears)")
	editCmd.Flags().Bool("public", false, "Make the snippet public")
	editCmd.Flags().Bool("private", false, "Make the snippet private")
	editCmd.Flags().StringP("file", "f", "", "Replace code from file ('-' for stdin)")
	editCmd.Flags().String("code", "", "Replace code inline")
	editCmd.MarkFlagsMutuallyExclusive("public", "private")
	editCmd.MarkFlagsMutuallyExclusive("file", "code")
	return editCmd
}

// buildPatch turns the flags the user set into a partial update
func buildPatch(cmd *cobra.Command) (model.SnippetPatch, error) {
	flags := cmd.Flags()
	var patch model.SnippetPatch

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	patch.Title = str("title")
	patch.Description = str("description")
	patch.Language = str("language")
	if patch.Language != nil {
		warnLanguage(cmd, *patch.Language)
	}

	if raw := str("tags"); raw != nil {
		tags := model.ParseTags(*raw)
		patch.Tags = &tags
	}

	if flags.Changed("public") || flags.Changed("private") {
		public, _ := flags.GetBool("public")
		if flags.Changed("private") {
			private, _ := flags.GetBool("private")
			public = !private
		}
		patch.IsPublic = &public
	}

	if flags.Changed("file") || flags.Changed("code") {
		file, _ := flags.GetString("file")
		code, err := readCode(cmd, file)
		if err != nil {
			return patch, err
		}
		patch.Code = &code
	}

	if patch.IsEmpty() {
		return patch, fmt.Errorf("nothing to update: pass at least one field flag")
	}
	return patch, nil
}

// readCode returns --code when set, else the contents of file, else stdin
func readCode(cmd *cobra.Command, file string) (string, error) {
	if cmd.Flags().Changed("code") {
		return cmd.Flags().GetString("code")
	}

	var r io.Reader = cmd.InOrStdin()
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	return string(data), nil
}

// warnLanguage notes a language outside the editor list; the server accepts
// any string, so the value is still sent
func warnLanguage(cmd *cobra.Command, language string) {
	if model.IsKnownLanguage(language) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠️  %q is not one of the editor languages (%s); sending it as given\n",
		language, strings.Join(model.Languages, ", "))
}

func languageForFile(file, fallback string) string {
	if lang, ok := extLanguages[strings.ToLower(filepath.Ext(file))]; ok {
		return lang
	}
	if fallback == "" {
		return model.DefaultLanguage
	}
	return fallback
}
