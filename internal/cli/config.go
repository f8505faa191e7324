package cli

import (
	"fmt"

	"github.com/existflow/snipvault/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(o *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show the current settings, or change them with flags.

Examples:
  snip config
  snip config --host snippets.lan
  snip config --default-language sql --confirm-delete=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg := o.cfg
			changed := false

			if flags.Changed("host") {
				cfg.Host, _ = flags.GetString("host")
				changed = true
			}
			if flags.Changed("default-language") {
				lang, _ := flags.GetString("default-language")
				warnLanguage(cmd, lang)
				cfg.DefaultLanguage = lang
				changed = true
			}
			if flags.Changed("confirm-delete") {
				cfg.ConfirmDelete, _ = flags.GetBool("confirm-delete")
				changed = true
			}
			if flags.Changed("timeout") {
				cfg.RequestTimeout, _ = flags.GetDuration("timeout")
				changed = true
			}

			out := cmd.OutOrStdout()
			if changed {
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintln(out, "✓ Settings saved")
			}

			path, _ := config.Path()
			fmt.Fprintf(out, "Config:           %s\n", path)
			fmt.Fprintf(out, "Server:           %s\n", cfg.BaseURL())
			fmt.Fprintf(out, "Default language: %s\n", cfg.DefaultLanguage)
			fmt.Fprintf(out, "Confirm delete:   %t\n", cfg.ConfirmDelete)
			fmt.Fprintf(out, "Request timeout:  %s\n", cfg.RequestTimeout)
			fmt.Fprintf(out, "Log level:        %s\n", cfg.LogLevel)
			return nil
		},
	}

	configCmd.Flags().String("host", "", "Backend hostname (port 8000 and /api are fixed)")
	configCmd.Flags().String("default-language", "", "Language preselected for new snippets")
	configCmd.Flags().Bool("confirm-delete", true, "Ask before deleting")
	configCmd.Flags().Duration("timeout", 0, "HTTP request timeout")
	return configCmd
}
