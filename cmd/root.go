// Package cmd implements the rupee CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/ledger"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/observe"
	"github.com/theirongolddev/rupee/internal/store"
)

var (
	flagDB       string
	flagQuiet    bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "rupee",
	Short: "Budget ledger with threshold alerts",
	Long: "Track expenses, bills and household waste against limits.\n" +
		"You are notified the first time a limit is crossed in each period.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Bad("  Error: "+err.Error()))
		if errors.Is(err, store.ErrCorrupt) {
			fmt.Fprintln(os.Stderr, cli.Muted("  Run `rupee reset <key>` to reseed the damaged collection. Keys: "+strings.Join(ledger.ResetKeys(), ", ")))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Database path (default $RUPEE_DB or ~/.local/share/rupee/rupee.db)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only print errors and alerts")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
}

// runtime bundles what a command needs to talk to the ledger.
type runtime struct {
	cfg     config.Config
	dbPath  string
	logger  *zap.Logger
	db      *store.DB
	metrics *observe.Metrics
	svc     *ledger.Service
}

// openRuntime loads config, builds the logger, opens the database and wires the
// ledger service with the configured alert behavior.
func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger, err := observe.NewLogger(level)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	path := flagDB
	if path == "" {
		path = config.DBPath(cfg)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened ledger", zap.String("db", path))

	metrics := observe.NewMetrics()
	svc := ledger.NewService(db,
		ledger.WithLogger(logger),
		ledger.WithObserver(metrics),
		ledger.WithRepeat(cfg.Alerts.Repeat),
		ledger.WithKeep(cfg.Alerts.Keep),
		ledger.WithRemindDays(cfg.Alerts.RemindDays),
		ledger.WithSeed(ledger.SeedFromConfig(cfg)),
	)

	return &runtime{
		cfg:     cfg,
		dbPath:  path,
		logger:  logger,
		db:      db,
		metrics: metrics,
		svc:     svc,
	}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Sync()
	_ = r.db.Close()
}

// withRuntime opens the runtime for the duration of fn.
func withRuntime(fn func(rt *runtime) error) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

// info prints a status line unless --quiet.
func info(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// printAlerts prints notifications raised by a command. They are shown even
// with --quiet.
func printAlerts(alerts []model.Notification) {
	for _, n := range alerts {
		switch n.Kind {
		case model.NotifyError:
			fmt.Println(cli.Bad("  ✗ " + n.Message))
		case model.NotifyWarning:
			fmt.Println(cli.Warn("  ⚠ " + n.Message))
		default:
			fmt.Println(cli.Muted("  • " + n.Message))
		}
	}
}

func parseDomainArg(s string) (model.Domain, error) {
	d, ok := model.ParseDomain(strings.ToLower(s))
	if !ok {
		return "", fmt.Errorf("unknown domain %q (want expense, bill or waste)", s)
	}
	return d, nil
}

// notFound reports a missing record as a no-op: a muted line, a debug log, and
// a nil error.
func notFound(rt *runtime, what, prefix string, err error) error {
	if !errors.Is(err, model.ErrNotFound) {
		return err
	}
	rt.logger.Debug("no match", zap.String("what", what), zap.String("id", prefix))
	info("  %s", cli.Muted(fmt.Sprintf("No %s matches %q", what, prefix)))
	return nil
}
