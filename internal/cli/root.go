package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/nhle/jira-bridge/internal/credential"
	"github.com/nhle/jira-bridge/internal/destination"
	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/service"
	"github.com/nhle/jira-bridge/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "jirasvc",
	Short: "jirasvc - Jira Cloud integration service",
	Long: `jirasvc exposes a small set of Jira Cloud operations: connection test,
project listing, issue lookup, JQL search and a local cache of recently
updated issues.

Credentials come from a destination service (USE_DESTINATION=true or
NODE_ENV=production) or from JIRA_BASE_URL, JIRA_USERNAME and JIRA_API_TOKEN.

Example:
  jirasvc jql "project = ABC ORDER BY created DESC" --max-results 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, or a .env file)")
}

// app bundles the components a command needs.
type app struct {
	cfg     *model.AppConfig
	logger  *log.Logger
	store   *store.SQLiteStore
	service *service.Service
}

// newApp loads configuration and wires the service. The Jira client is
// resolved eagerly so every command starts from an initialized client.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := model.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log.Level)

	if err := os.MkdirAll(dirOf(cfg.Cache.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	st, err := store.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}

	resolver := credential.NewResolver(cfg, newBroker(cfg), logger)
	svc := service.New(resolver, st, logger)
	svc.Init(ctx)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		service: svc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// newBroker returns the destination broker, or nil when no destination
// service is configured.
func newBroker(cfg *model.AppConfig) destination.Broker {
	if cfg.Destination.ServiceURL == "" {
		return nil
	}
	return destination.NewService(destination.Config{
		ServiceURL:   cfg.Destination.ServiceURL,
		TokenURL:     cfg.Destination.TokenURL,
		ClientID:     cfg.Destination.ClientID,
		ClientSecret: cfg.Destination.ClientSecret,
	})
}

func newLogger(level string) *log.Logger {
	return &log.Logger{
		Level:      log.ParseLevel(level),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: true,
		},
	}
}

// withApp runs fn with a wired app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
