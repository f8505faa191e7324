package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/snipvault/internal/app"
	"github.com/spf13/cobra"
)

func newDeleteCmd(o *options) *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:     "delete [snippet-id]",
		Aliases: []string{"rm"},
		Short:   "Delete a snippet",
		Long: `Delete a snippet by its ID.

Examples:
  snip delete 12
  snip rm 12 --yes`,
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

			ctx := context.Background()
			out := cmd.OutOrStdout()

			// Fetch first so the prompt can show the title
			s, err := a.OpenSnippet(ctx, id)
			if err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgOpenFailed))
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if o.cfg.ConfirmDelete && !yes {
				fmt.Fprintf(out, "About to delete: \"%s\" (ID: %d)\n", s.Title, s.ID)
				if !newPrompter(cmd).confirm("Are you sure?") {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}

			if err := a.DeleteSnippet(ctx, id); err != nil {
				return errors.New(app.ErrorMessage(err, app.MsgDeleteFailed))
			}

			fmt.Fprintf(out, "🗑️  Deleted: \"%s\"\n", s.Title)
			return nil
		},
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return deleteCmd
}
