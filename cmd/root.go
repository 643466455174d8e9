package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/omdbfilm/config"
	"github.com/s0up4200/omdbfilm/filter"
	"github.com/s0up4200/omdbfilm/omdb"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	omdbClient    *omdb.Client
	filterManager *filter.Manager

	// Command flags
	outputFormat string
	filterExpr   string
	preset       string
	searchMode   string
	concurrency  int
	summary      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "omdbfilm",
	Short: "Look up films on the OMDb API",
	Long: `omdbfilm is a CLI tool that fetches film details from the Open Movie Database.
Films can be looked up by exact title or IMDb ID, or searched by title and
narrowed down with filter expressions.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text or json)")

	// Add subcommands
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(idCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", outputFormat)
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override search settings from command line if specified
	if flagChanged(cmd, "mode") {
		cfg.Search.Mode = searchMode
	}
	if flagChanged(cmd, "concurrency") {
		cfg.Search.Concurrency = concurrency
	}

	mode, err := omdb.ParseSearchMode(cfg.Search.Mode)
	if err != nil {
		return err
	}

	omdbClient, err = omdb.NewClient(cfg.OMDb.URL, cfg.OMDb.APIKey, logger,
		omdb.WithTimeout(cfg.OMDb.Timeout),
		omdb.WithUserAgent(cfg.OMDb.UserAgent),
		omdb.WithSearchMode(mode),
		omdb.WithConcurrency(cfg.Search.Concurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to create OMDb client: %w", err)
	}

	filterManager = filter.NewManager()
	if err := filterManager.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("url", cfg.OMDb.URL).
		Str("mode", mode.String()).
		Int("concurrency", cfg.Search.Concurrency).
		Int("presets", len(cfg.Filter.Presets)).
		Msg("OMDb client ready")

	return nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, no colour when stderr is redirected
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
