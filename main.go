package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bepa/internal/config"
	"bepa/internal/geolite"
	"bepa/internal/monitor"
	"bepa/internal/netrange"
	"bepa/internal/notify"
	"bepa/internal/sampler"
	"bepa/internal/support"
)

var (
	targetsFlag  string
	excludesFlag string
	intervalFlag time.Duration
	verboseFlag  bool
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Debug("No .env file found. Falling back to system environment variables.")
	}
}

var rootCmd = &cobra.Command{
	Use:   "bepa",
	Short: "Alert on established connections into monitored IP ranges",
	Long: `bepa polls the host's established TCP connections and raises a desktop
alert the first time a connection's remote endpoint falls inside the
configured target ranges (and outside the exclude ranges). Repeat alerts
for the same endpoint are suppressed until its connection disappears and
comes back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			log.SetLevel(log.DebugLevel)
		}
	},
	RunE: runWatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the monitoring loop until interrupted",
	RunE:  runWatch,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sample the connection table once and print each classification",
	RunE:  runScan,
}

var checkCmd = &cobra.Command{
	Use:   "check <address>",
	Short: "Classify a single address against the configured ranges",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("bepa failed", "error", err)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(targetsFlag, excludesFlag, intervalFlag)
	if err != nil {
		return err
	}

	if os.Geteuid() != 0 {
		log.Warn("Running without root privileges. Some connections might not be visible.")
	}

	enricher, err := geolite.Open(cfg.GeoLitePath)
	if err != nil {
		log.Warn("GeoLite enrichment disabled", "error", err)
		enricher = nil
	}
	defer enricher.Close()

	var sinks []notify.Sink
	if !cfg.NotifyDisabled {
		desktop := notify.NewNotifySendSink()
		if !desktop.Available() {
			log.Warn("notify-send not found. Desktop notifications may not work.")
		}
		sinks = append(sinks, desktop)
	}
	if cfg.RedisURL != "" {
		redisSink, err := notify.NewRedisSink(cfg.RedisURL, cfg.RedisChannel)
		if err != nil {
			log.Warn("Redis alert sink disabled", "error", err)
		} else {
			sinks = append(sinks, redisSink)
			defer func() {
				if err := support.CloseRedisClients(); err != nil {
					log.Warn("Error closing Redis client", "error", err)
				}
			}()
		}
	}

	names := sampler.NewSystemProcessNames()
	dispatcher := notify.NewDispatcher(names, enricher, true, sinks...)
	matcher := netrange.NewMatcher(cfg.Targets, cfg.Excludes)
	mon := monitor.New(sampler.NewSystemSampler(), matcher, dispatcher, cfg.Interval)

	log.Info("Starting network monitor",
		"targets", cfg.Targets.String(),
		"excludes", cfg.Excludes.String(),
		"interval", cfg.Interval,
	)
	if cfg.Excludes.Len() == 0 {
		log.Info("No IP ranges excluded from monitoring")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return mon.Run(ctx)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(targetsFlag, excludesFlag, intervalFlag)
	if err != nil {
		return err
	}

	conns, err := sampler.NewSystemSampler().Sample()
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	matcher := netrange.NewMatcher(cfg.Targets, cfg.Excludes)
	names := sampler.NewSystemProcessNames()

	fmt.Printf("%-22s %-11s %-9s %-20s %s\n", "REMOTE", "LOCAL PORT", "VERDICT", "RANGE", "PROCESS")
	for _, c := range conns {
		cls := matcher.ClassifyAddr(c.RemoteIP)
		rangeLabel := "-"
		if cls.Verdict == netrange.Targeted {
			rangeLabel = cls.Range.String()
		}
		fmt.Printf("%-22s %-11d %-9s %-20s %s (%d)\n",
			c.Endpoint(), c.LocalPort, cls.Verdict, rangeLabel, names.Name(c.Pid), c.Pid)
	}
	log.Info("Scan complete", "connections", len(conns))
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(targetsFlag, excludesFlag, intervalFlag)
	if err != nil {
		return err
	}

	matcher := netrange.NewMatcher(cfg.Targets, cfg.Excludes)
	cls := matcher.ClassifyAddr(args[0])
	switch cls.Verdict {
	case netrange.Targeted:
		fmt.Printf("%s: TARGETED (range %s)\n", args[0], cls.Range)
	case netrange.Excluded:
		fmt.Printf("%s: EXCLUDED\n", args[0])
	default:
		fmt.Printf("%s: IGNORED\n", args[0])
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&targetsFlag, "targets", "", "Comma-separated target CIDR list (overrides TARGET_IP_RANGES)")
	rootCmd.PersistentFlags().StringVar(&excludesFlag, "excludes", "", "Comma-separated exclude CIDR list (overrides EXCLUDE_IP_RANGES)")
	rootCmd.PersistentFlags().DurationVar(&intervalFlag, "interval", 0, "Polling interval (overrides MONITOR_INTERVAL)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
}
