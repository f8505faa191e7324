package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/snipvault/internal/api"
	"github.com/existflow/snipvault/internal/app"
	"github.com/existflow/snipvault/internal/config"
	"github.com/existflow/snipvault/internal/db"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/existflow/snipvault/internal/tokenstore"
	"github.com/existflow/snipvault/internal/tui"
	"github.com/spf13/cobra"
)

// options is the state shared by every command of one invocation
type options struct {
	logLevel   string
	logFile    string
	logConsole bool

	cfg *config.Config

	// baseURL and dbPath override the configured API root and the default
	// state database. Empty means use the defaults.
	baseURL string
	dbPath  string
}

// NewRootCmd builds the snip command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "snip",
		Short: "SnipVault - Terminal code snippet manager",
		Long: `SnipVault keeps your code snippets on a snippet server and lets you
browse, create and share them from the terminal.

Run 'snip' without arguments to launch the interactive TUI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load config from file (or defaults if not exists)
			cfg, err := config.Load()
			if err != nil {
				logger.Warn("Failed to load config, using defaults", logger.F("error", err))
				cfg = config.DefaultConfig()
			}

			// Override with CLI flags if provided
			configChanged := false
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = o.logLevel
				configChanged = true
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = o.logFile
				configChanged = true
			}
			if cmd.Flags().Changed("log-console") {
				cfg.LogConsole = o.logConsole
				configChanged = true
			}

			// Save config if changed via CLI flags
			if configChanged {
				if err := cfg.Save(); err != nil {
					logger.Warn("Failed to save config", logger.F("error", err))
				}
			}

			logConfig := logger.Config{
				Level:      logger.ParseLevel(cfg.LogLevel),
				FilePath:   cfg.LogFile,
				MaxSize:    10 * 1024 * 1024, // 10MB
				MaxAge:     7,
				MaxBackups: 5,
				Console:    cfg.LogConsole,
			}

			if err := logger.Init(logConfig); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			o.cfg = cfg
			logger.Info("SnipVault started", logger.F("command", cmd.Name()), logger.F("host", cfg.Host))
			return nil
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeApp, err := o.openApp()
			if err != nil {
				return err
			}
			defer closeApp()

			logger.Info("Launching TUI")
			m := tui.NewModel(a, o.cfg)
			defer m.Close()

			p := tea.NewProgram(m, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				logger.Error("TUI error", logger.F("error", err))
				return fmt.Errorf("failed to run TUI: %w", err)
			}

			logger.Info("TUI exited normally")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Info("SnipVault exiting", logger.F("command", cmd.Name()))
			_ = logger.Close()
		},
	}

	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&o.logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&o.logConsole, "log-console", false, "Enable console logging")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd(o))
	rootCmd.AddCommand(newListCmd(o))
	rootCmd.AddCommand(newPublicCmd(o))
	rootCmd.AddCommand(newShowCmd(o))
	rootCmd.AddCommand(newAddCmd(o))
	rootCmd.AddCommand(newEditCmd(o))
	rootCmd.AddCommand(newDeleteCmd(o))
	rootCmd.AddCommand(newTagsCmd(o))
	rootCmd.AddCommand(newConfigCmd(o))
	rootCmd.AddCommand(newDevServerCmd(o))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// openDB opens the state database at --db or the default location
func (o *options) openDB() (*db.DB, error) {
	path := o.dbPath
	if path == "" {
		var err error
		if path, err = db.DefaultDBPath(); err != nil {
			return nil, err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}

// serverURL is the API root every command talks to
func (o *options) serverURL() string {
	if o.baseURL != "" {
		return o.baseURL
	}
	return o.cfg.BaseURL()
}

// newApp wires an App to the configured backend, keeping its token in database
func (o *options) newApp(database *db.DB) *app.App {
	baseURL := o.serverURL()
	holder := tokenstore.NewDBHolder(database, baseURL)
	return app.New(baseURL, holder, api.WithTimeout(o.cfg.RequestTimeout))
}

// openApp opens the state database and wires an App to the configured
// backend. The returned func closes the database.
func (o *options) openApp() (*app.App, func(), error) {
	database, err := o.openDB()
	if err != nil {
		return nil, nil, err
	}

	return o.newApp(database), func() {
		_ = database.Close()
		logger.Debug("Database closed")
	}, nil
}
