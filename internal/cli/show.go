package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/model"
	"github.com/spf13/cobra"
)

func newShowCmd(o *options) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show [snippet-id]",
		Short: "Show a snippet",
		Long: `Show a snippet with its code.

Examples:
  snip show 12
  snip show 12 --raw > hello.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSnippetID(args[0])
			if err != nil {
				return err
			}

			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			s, err := a.OpenSnippet(context.Background(), id)
			if err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgOpenFailed))
			}

			out := cmd.OutOrStdout()
			if raw, _ := cmd.Flags().GetBool("raw"); raw {
				fmt.Fprint(out, s.Code)
				if !strings.HasSuffix(s.Code, "\n") {
					fmt.Fprintln(out)
				}
				return nil
			}
			printSnippet(out, s)
			return nil
		},
	}
	showCmd.Flags().Bool("raw", false, "Print only the code")
	return showCmd
}

func printSnippet(out io.Writer, s model.Snippet) {
	visibility := "private"
	if s.IsPublic {
		visibility = "public"
	}

	fmt.Fprintf(out, "\n%s  (#%d, %s, %s)\n", s.Title, s.ID, s.Language, visibility)
	if s.Description != "" {
		fmt.Fprintln(out, s.Description)
	}
	if names := s.TagNames(); len(names) > 0 {
		fmt.Fprintf(out, "Tags: #%s\n", strings.Join(names, " #"))
	}
	if s.CreatedAt != nil {
		fmt.Fprintf(out, "Created: %s   Views: %d\n", s.CreatedAt.Local().Format("Jan 2, 2006 15:04"), s.ViewCount)
	}
	fmt.Fprintln(out, strings.Repeat("─", 72))
	fmt.Fprintln(out, strings.TrimRight(s.Code, "\n"))
	fmt.Fprintln(out, strings.Repeat("─", 72))
}
