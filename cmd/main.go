// Command wardwatch runs the compliance dashboard API and its maintenance
// commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/wardwatch/internal/adapters/repository"
	app "github.com/okian/wardwatch/internal/app"
	"github.com/okian/wardwatch/internal/config"
	"github.com/okian/wardwatch/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// cli carries what PersistentPreRunE prepared for the subcommands.
type cli struct {
	cfg  *config.Config
	log  logger.Logger
	json bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "wardwatch",
		Short: "Hospital compliance dashboard",
		Long: `WardWatch tracks the compliance work of a hospital: tasks per area, training
attendance, technical maintenance, SSM/PSI registers, quality KPIs and
environmental records. Every dashboard number is recomputed from the stored
collections on read.

Configuration is layered: defaults, then the YAML file named by
WARDWATCH_CONFIG, then WARDWATCH_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().BoolVar(&c.json, "json", false, "output JSON")

	root.AddCommand(
		newServeCmd(c),
		newImportTrainingCmd(c),
		newSummaryCmd(c),
		newCardsCmd(c),
		newSeedCmd(c),
	)
	return root
}

// setup loads configuration and sets up logging.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// openStore opens the configured key-value backend.
func (c *cli) openStore() (repository.KV, error) {
	switch c.cfg.StorageDriver {
	case config.StorageSQLite:
		kv, err := repository.OpenSQLite(c.cfg.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store %s: %w", c.cfg.StoragePath, err)
		}
		return kv, nil
	default:
		return repository.NewMemoryKV(), nil
	}
}

// newService opens the store and builds the service from configuration.
// The caller owns the returned store.
func (c *cli) newService(ctx context.Context) (*app.Service, repository.KV, error) {
	c.log.Debug(ctx, "opening store", logger.String("driver", c.cfg.StorageDriver))
	kv, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	loc, err := c.cfg.Location()
	if err != nil {
		_ = kv.Close()
		return nil, nil, err
	}
	svc := app.New(
		app.WithKV(kv),
		app.WithLocation(loc),
		app.WithLogger(c.log.Named("service")),
		app.WithWindows(app.Windows{
			Equipment: c.cfg.EquipmentWindowDays,
			EIP:       c.cfg.EIPWindowDays,
			Permits:   c.cfg.PermitWindowDays,
			Contracts: c.cfg.ContractWindowDays,
		}),
		app.WithTopN(c.cfg.TopN),
		app.WithRefreshQueueSize(c.cfg.RefreshQueueSize),
		app.WithIdempotencyCacheSize(c.cfg.IdempotencyCacheSize),
	)
	return svc, kv, nil
}
