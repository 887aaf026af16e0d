// Package cmd defines and implements the CLI commands for the hunter-searcher executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/hunter-searcher/internal/app"
	"github.com/JakeFAU/hunter-searcher/internal/config"
	"github.com/JakeFAU/hunter-searcher/internal/crawler"
	"github.com/JakeFAU/hunter-searcher/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application interface that commands will use.
// This allows us to inject a fake app during tests.
type App interface {
	Close()
	Logger() *zap.Logger
	NewCrawler(cfg *crawler.Config) (*crawler.Crawler, error)
	Serve(ctx context.Context) error
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

// options carries the values shared by all subcommands once the root has run.
type options struct {
	configFile string
	cfg        config.Config
	app        App
}

// newRootCmd creates and configures the root command.
func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunter-searcher",
		Short: "A polite breadth-first crawler with a full-text search front end.",
		Long: `hunter-searcher crawls the web one page at a time, honoring robots.txt,
and indexes what it finds into Postgres full-text search. The serve command
exposes the index over HTTP.`,
		SilenceUsage: true,

		// Builds the application once flags are parsed and before RunE.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg

			logger, err := logging.New(cfg.Logging.Development, logging.FileConfig{
				Path:       cfg.Logging.File,
				MaxSizeMB:  cfg.Logging.MaxSizeMB,
				MaxBackups: cfg.Logging.MaxBackups,
				MaxAgeDays: cfg.Logging.MaxAgeDays,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			opts.app = appInstance
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML); HUNTER_* env vars override it")

	cmd.AddCommand(newCrawlCmd(opts))
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// run executes the CLI with args and closes the app afterwards, whether or
// not the command succeeded.
func run(ctx context.Context, args []string) error {
	opts := &options{}
	root := newRootCmd(opts)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if opts.app != nil {
		opts.app.Close()
	}
	return err
}

// Execute is the main entry point.
func Execute() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		zap.L().Error("command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
