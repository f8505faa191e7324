package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/existflow/snipvault/internal/fakeapi"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newDevServerCmd(o *options) *cobra.Command {
	devCmd := &cobra.Command{
		Use:   "dev-server",
		Short: "Run an in-memory snippet server for local development",
		Long: `Run an in-memory snippet server that speaks the same API as the real
backend. Data is lost when the process exits.

Examples:
  snip dev-server
  snip dev-server --addr :8000 --secret dev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			secret, _ := cmd.Flags().GetString("secret")
			if secret == "" {
				secret = uuid.NewString()
			}

			log := logger.NewWriter(cmd.OutOrStdout(), logger.INFO)
			srv := fakeapi.New(secret, log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(addr)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "🚀 Dev server listening on %s (API at /api)\n", addr)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			log.Info("Shutting down dev server...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info("Dev server exited")
			return nil
		},
	}

	devCmd.Flags().String("addr", ":8000", "Listen address")
	devCmd.Flags().String("secret", "", "JWT signing secret (random when empty)")
	return devCmd
}
