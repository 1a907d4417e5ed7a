package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/animeshelf/internal/config"
	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/telemetry"
	"github.com/existflow/animeshelf/internal/tui"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

var (
	apiURL     string
	logLevel   string
	logFile    string
	logConsole bool
	traceSpans bool
)

var (
	cfg           *config.Config
	traceShutdown func(context.Context) error
)

var rootCmd = &cobra.Command{
	Use:   "animeshelf",
	Short: "AnimeShelf - browse the anime catalog from your terminal",
	Long: `AnimeShelf is a terminal client for the anime catalog API: top rated,
popular and per-genre shelves, incremental search, ratings and
personal recommendations.

Run 'animeshelf' without arguments to launch the interactive TUI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load("")
		if err != nil {
			logger.Warn("Failed to load config, using defaults", logger.F("error", err))
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("api-url") {
			cfg.APIURL = apiURL
			configChanged = true
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
			configChanged = true
		}
		if cmd.Flags().Changed("trace") {
			cfg.Trace = traceSpans
			configChanged = true
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(""); err != nil {
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

		shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
			ServiceName:    "animeshelf",
			ServiceVersion: Version,
			Enabled:        cfg.Trace,
			File:           cfg.TraceFile,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		traceShutdown = shutdown

		logger.Info("AnimeShelf started",
			logger.F("command", cmd.Name()),
			logger.F("version", Version),
			logger.F("api_url", cfg.APIURL))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.Run(cmd.Context(), tui.Deps{
			Catalog: a.api,
			Store:   a.store,
			Session: a.session,
			Prefs:   a.prefs,
			Logger:  logger.Default(),
			Tracer:  telemetry.Tracer(),
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceShutdown != nil {
			if err := traceShutdown(context.Background()); err != nil {
				logger.Warn("Failed to flush traces", logger.F("error", err))
			}
			traceShutdown = nil
		}
		logger.Info("AnimeShelf exiting", logger.F("command", cmd.Name()))
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Catalog API base URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().BoolVar(&traceSpans, "trace", false, "Write API spans to the trace file")

	// Browse
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(popularCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(characterCmd)
	rootCmd.AddCommand(voiceActorCmd)
	rootCmd.AddCommand(genreCmd)
	rootCmd.AddCommand(limitCmd)

	// Account
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(myAnimesCmd)
	rootCmd.AddCommand(recommendCmd)
}
