// Command sentinel is the host-resident observability and threat-detection
// agent: it fingerprints the host, correlates the platform audit trail
// against a learned baseline, and routes SIEM events to the configured
// sinks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/librepower/csentinel/internal/agent"
	"github.com/librepower/csentinel/internal/config"
	"github.com/librepower/csentinel/internal/logging"
	"github.com/librepower/csentinel/pkg/fingerprint"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sentinel",
		Short: "Host observability and threat-detection agent",
	}

	root.PersistentFlags().Int("interval", 60, "poll interval in seconds for watch mode")
	root.PersistentFlags().String("cron", "", "cron expression for watch mode, overrides --interval")
	root.PersistentFlags().String("syslog", "", "syslog sink target as host:port")
	root.PersistentFlags().String("syslog-format", "cef", "syslog rendering: cef or json")
	root.PersistentFlags().String("log-file", "", "append-only JSON event log path")
	root.PersistentFlags().String("email", "", "email sink recipient")
	root.PersistentFlags().Int("risk-threshold", 31, "minimum risk score that triggers the email sink")

	root.AddCommand(newRunCmd(root), newWatchCmd(root), newDoctorCmd())
	return root
}

func loadAgent(flags *cobra.Command) (*agent.Agent, error) {
	cfg, err := config.Load(flags.Flags())
	if err != nil {
		return nil, err
	}
	log := logging.New(logging.Config{Level: logging.ParseLevel(cfg.LogLevel), Format: cfg.LogFormat})
	logging.SetDefault(log)
	return agent.New(cfg, log)
}

func newRunCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Collect one fingerprint/audit window and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadAgent(root)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			res, err := a.RunOnce(ctx)
			if err != nil {
				return err
			}
			if err := printResult(res); err != nil {
				return err
			}
			os.Exit(res.ExitCode)
			return nil
		},
	}
}

func newWatchCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the collection loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadAgent(root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runTick := func() {
				tickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
				defer cancel()
				res, err := a.RunOnce(tickCtx)
				if err != nil {
					a.Log.WithError(err).Error("collection tick failed")
					return
				}
				if err := printResult(res); err != nil {
					a.Log.WithError(err).Warn("failed to print result")
				}
			}

			spec := a.Config.CronSchedule
			if spec == "" {
				spec = fmt.Sprintf("@every %ds", a.Config.IntervalSeconds)
			}

			sched := cron.New(cron.WithLogger(cron.DiscardLogger))
			if _, err := sched.AddFunc(spec, runTick); err != nil {
				return fmt.Errorf("invalid watch schedule %q: %w", spec, err)
			}

			runTick()
			sched.Start()
			<-ctx.Done()
			<-sched.Stop().Done()
			return nil
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the agent's runtime dependencies are satisfiable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat("/proc"); err != nil {
				fmt.Fprintln(os.Stderr, "FAIL: /proc is not available:", err)
				os.Exit(1)
			}
			fmt.Println("OK: /proc is available")
			fmt.Println("OK: effective uid", os.Geteuid())
			return nil
		},
	}
}

func printResult(res agent.Result) error {
	summaryBytes, err := json.Marshal(res.AuditSummary)
	if err != nil {
		return err
	}
	doc, err := fingerprint.Emit(res.Fingerprint, summaryBytes)
	if err != nil {
		return err
	}
	fmt.Println(string(doc))
	return nil
}
