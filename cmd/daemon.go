package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/config"
	"github.com/theirongolddev/rupee/internal/daemon"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background budget monitor with HTTP/SSE endpoints",
	Long: "Re-evaluates every limit on an interval so period rollovers and entries\n" +
		"written by other processes raise alerts, and serves status, notifications\n" +
		"and Prometheus metrics over HTTP.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "rupeed.pid")
	defaultLog := filepath.Join(config.DataDir(), "rupeed.log")

	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Evaluation interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", defaultPID, "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", defaultLog, "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonState is kept in the pid file while the daemon runs.
type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// pidFile is the path of a daemon's state file.
type pidFile string

func (p pidFile) read() (daemonState, error) {
	var st daemonState
	//nolint:gosec // pid path is configured by the local user
	data, err := os.ReadFile(string(p))
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil || st.PID <= 0 {
		return st, fmt.Errorf("invalid daemon state in %s", p)
	}
	return st, nil
}

func (p pidFile) write(st daemonState) error {
	if err := os.MkdirAll(filepath.Dir(string(p)), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(string(p), append(data, '\n'), 0o600)
}

func (p pidFile) remove() { _ = os.Remove(string(p)) }

// live returns the state of a running daemon. A file left by a dead process is
// removed and reported as not running.
func (p pidFile) live() (daemonState, bool) {
	st, err := p.read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.remove()
		}
		return daemonState{}, false
	}
	if !processAlive(st.PID) {
		p.remove()
		return daemonState{}, false
	}
	return st, true
}

func (p pidFile) ensureNotRunning() error {
	if st, ok := p.live(); ok {
		return fmt.Errorf("daemon already running (pid %d)", st.PID)
	}
	return nil
}

// daemonAddr returns --addr, falling back to the configured address.
func daemonAddr(cfg config.Config) string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return cfg.Daemon.Addr
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

func startDaemonDetached() error {
	if err := pidFile(flagDaemonPIDFile).ensureNotRunning(); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	args := append(filterDetachArg(os.Args[1:]), "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	cfg, _ := config.Load()
	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr(cfg))
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground() error {
	pf := pidFile(flagDaemonPIDFile)
	if err := pf.ensureNotRunning(); err != nil {
		return err
	}

	return withRuntime(func(rt *runtime) error {
		addr := daemonAddr(rt.cfg)
		interval := flagDaemonInterval
		if interval <= 0 {
			interval = rt.cfg.PollInterval()
		}

		if err := pf.write(daemonState{
			PID:       os.Getpid(),
			Addr:      addr,
			StartedAt: time.Now(),
			DBPath:    rt.dbPath,
		}); err != nil {
			return err
		}
		defer pf.remove()

		svc := daemon.New(daemon.Config{
			DBPath:       rt.dbPath,
			Interval:     interval,
			Addr:         addr,
			EventsBuffer: flagDaemonEventsBuffer,
		}, rt.svc, rt.logger, rt.metrics)

		fmt.Printf("  rupee daemon listening on http://%s\n", addr)
		fmt.Printf("  Evaluating limits every %s against %s\n", interval, rt.dbPath)
		fmt.Printf("  Stop with: rupee daemon stop --pid-file %s\n", flagDaemonPIDFile)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			rt.logger.Error("daemon stopped", zap.Error(err))
			return err
		}
		return nil
	})
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	st, ok := pidFile(flagDaemonPIDFile).live()
	if !ok {
		fmt.Println("  Daemon: not running")
		return nil
	}

	addr := st.Addr
	if addr == "" {
		cfg, _ := config.Load()
		addr = daemonAddr(cfg)
	}
	fmt.Printf("  Daemon PID: %d (up %s)\n", st.PID, time.Since(st.StartedAt).Round(time.Second))
	fmt.Printf("  Address: http://%s\n", addr)

	status, err := daemon.NewClient(addr).Status(context.Background())
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}

	if status.LastPollAt.IsZero() {
		fmt.Println("  Last evaluation: pending")
	} else {
		fmt.Printf("  Last evaluation: %s (%d so far)\n", status.LastPollAt.Local().Format(time.RFC3339), status.PollCount)
	}

	sum := status.Summary
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Database", status.DBPath},
			{"Balance", cli.FormatRupee(sum.Balance)},
			{"Spent today", cli.FormatRupee(sum.SpentToday)},
			{"Spent this month", cli.FormatRupee(sum.SpentMonth)},
			{"Bills due", fmt.Sprintf("%s (%d overdue)", cli.FormatRupee(sum.BillsDue), sum.BillsOverdue)},
			{"Waste", cli.FormatKg(sum.WasteKg)},
			{"Limits exceeded", fmt.Sprintf("%d", sum.OverLimits)},
			{"Unread notifications", fmt.Sprintf("%d", sum.Unread)},
		},
	}))
	if status.LastError != "" {
		fmt.Println(cli.Bad("  Last error: " + status.LastError))
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pf := pidFile(flagDaemonPIDFile)
	st, ok := pf.live()
	if !ok {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(st.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(st.PID) {
			pf.remove()
			fmt.Printf("  Stopped daemon (pid %d)\n", st.PID)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", st.PID)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
