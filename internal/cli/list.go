package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/model"
	"github.com/spf13/cobra"
)

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your snippets",
		Long: `List the snippets you own.

Examples:
  snip list
  snip ls`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			if err := a.LoadDashboard(context.Background()); err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgLoadFailed))
			}

			snippets := a.Snippets.Snippets()
			if len(snippets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snippets found. Add one with: snip add --title \"Hello\" --file hello.py")
				return nil
			}
			printSnippets(cmd.OutOrStdout(), "My Snippets", snippets)
			return nil
		},
	}
}

func newPublicCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "public",
		Short: "List public snippets from every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			if err := a.LoadPublic(context.Background()); err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgPublicFailed))
			}

			snippets := a.Snippets.Public()
			if len(snippets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No public snippets yet.")
				return nil
			}
			printSnippets(cmd.OutOrStdout(), "Public Snippets", snippets)
			return nil
		},
	}
}

func newTagsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List known tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			tags, err := a.Tags(context.Background())
			if err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgTagsFailed))
			}

			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "No tags yet.")
				return nil
			}
			for _, t := range tags {
				fmt.Fprintf(out, "  #%s\n", t.Name)
			}
			return nil
		},
	}
}

func printSnippets(out io.Writer, heading string, snippets []model.Snippet) {
	fmt.Fprintf(out, "\n📁 %s (%d)\n", heading, len(snippets))
	fmt.Fprintln(out, strings.Repeat("─", 72))

	for _, s := range snippets {
		printSnippetRow(out, s)
	}
	fmt.Fprintln(out)
}

func printSnippetRow(out io.Writer, s model.Snippet) {
	visibility := "🔒"
	if s.IsPublic {
		visibility = "🌐"
	}

	// Truncate title if too long
	title := s.Title
	if len(title) > 32 {
		title = title[:29] + "..."
	}

	tags := ""
	if names := s.TagNames(); len(names) > 0 {
		tags = "#" + strings.Join(names, " #")
	}

	fmt.Fprintf(out, "  %s %-6d  %-32s  %-10s  %s\n", visibility, s.ID, title, s.Language, tags)
}

func parseSnippetID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snippet id: %q", raw)
	}
	return id, nil
}
