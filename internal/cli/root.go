package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smswithoutborders/reliability-store/internal/config"
	"github.com/smswithoutborders/reliability-store/internal/logging"
	"github.com/smswithoutborders/reliability-store/internal/models"
	"github.com/smswithoutborders/reliability-store/internal/storage"
)

// Recorder is the event-store surface the CLI consumes. Nothing here depends
// on which engine backs it.
type Recorder interface {
	Record(ctx context.Context, clientID string, kind models.Kind, detail string) (*models.ReliabilityEvent, error)
	Query(ctx context.Context, filter models.EventFilter) ([]models.ReliabilityEvent, error)
	Count(ctx context.Context, filter models.EventFilter) (int64, error)
}

// RootOptions holds global flags and the wired dependencies for all commands.
type RootOptions struct {
	ConfigPath string
	EnvFile    string
	Verbose    bool

	logger   logging.Logger
	recorder Recorder
	cleanup  func()
}

// NewRootCommand creates the root command for reliabilityctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reliabilityctl",
		Short: "Record and inspect gateway-client reliability events",
		Long: "reliabilityctl persists outcomes of gateway-client interactions " +
			"(delivery attempts, retries, failures) against the configured " +
			"relational backend and queries them back.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.wire()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.cleanup != nil {
				opts.cleanup()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "config.ini", "INI config file naming the credentials descriptor")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env", "", "optional .env file loaded before credential resolution")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewRecordCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))

	return cmd
}

// wire resolves credentials and builds the store. Skipped when a recorder was
// injected, which is how command tests run against a fake.
func (o *RootOptions) wire() error {
	if o.recorder != nil {
		return nil
	}

	if o.EnvFile != "" {
		if err := godotenv.Load(o.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", o.EnvFile, err)
		}
	}

	level := "info"
	if o.Verbose {
		level = "debug"
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "production"
	}
	logger, err := logging.NewLogger(environment, level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(zap.String("run_id", uuid.New().String()))

	creds, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	logger.Debug("credentials resolved", zap.String("engine", string(creds.Engine)))

	provider := storage.NewProvider(creds, logger)
	o.logger = logger
	o.recorder = storage.NewEventStore(provider, logger)
	o.cleanup = func() {
		if err := provider.Release(); err != nil {
			logger.Warn("failed to release connection", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return nil
}
