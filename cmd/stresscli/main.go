package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiowebux/stresscli/internal/engine"
	"github.com/studiowebux/stresscli/internal/export"
	"github.com/studiowebux/stresscli/internal/profile"
	"github.com/studiowebux/stresscli/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stresscli",
	Short: "stresscli - HTTP load testing tool",
	Long: `stresscli fires a configurable pattern of concurrent HTTP requests at a
target URL, measures every request, and reports latency percentiles,
throughput, and an error breakdown.

Each virtual user issues its requests strictly in sequence; users run in
parallel, bounded by the connection pool size. Always make sure you have
permission to load test the target.

Examples:
  stresscli run https://example.com                      # 10 users x 5 requests
  stresscli run https://example.com -u 50 -n 20          # heavier run
  stresscli run https://api.local/x -X POST -d '{"a":1}' # POST with body
  stresscli run https://example.com --export json > out.json
  stresscli run -p staging-health                        # saved profile
  stresscli profiles                                     # list saved profiles`,
	Version: version,
}

var runFlags struct {
	users        int
	requests     int
	timeout      time.Duration
	delay        time.Duration
	method       string
	headers      []string
	body         string
	userAgent    string
	insecure     bool
	noRedirects  bool
	pool         int
	plain        bool
	exportFormat string
	exportFile   string
	profileName  string
	profilesFile string
	saveProfile  string
}

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Execute a stress test against a URL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStressTest,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved test profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := profile.Load(runFlags.profilesFile)
		if err != nil {
			return err
		}
		if len(f.Profiles) == 0 {
			fmt.Println("No profiles saved.")
			return nil
		}
		for _, p := range f.Profiles {
			fmt.Printf("%-20s %s %s (%d users x %d requests)\n",
				p.Name, p.Config().EffectiveMethod(), p.URL, p.Users, p.RequestsPerUser)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVarP(&runFlags.users, "users", "u", 10, "number of concurrent virtual users")
	runCmd.Flags().IntVarP(&runFlags.requests, "requests", "n", 5, "requests per virtual user")
	runCmd.Flags().DurationVar(&runFlags.timeout, "timeout", engine.DefaultRequestTimeout, "per-request timeout")
	runCmd.Flags().DurationVar(&runFlags.delay, "delay", 0, "delay between a user's successive requests")
	runCmd.Flags().StringVarP(&runFlags.method, "method", "X", "GET", "HTTP method")
	runCmd.Flags().StringArrayVarP(&runFlags.headers, "header", "H", nil, "request header, 'Key: Value' (repeatable)")
	runCmd.Flags().StringVarP(&runFlags.body, "body", "d", "", "request body")
	runCmd.Flags().StringVarP(&runFlags.userAgent, "user-agent", "A", "", "User-Agent header")
	runCmd.Flags().BoolVarP(&runFlags.insecure, "insecure", "k", false, "skip TLS certificate verification")
	runCmd.Flags().BoolVar(&runFlags.noRedirects, "no-redirects", false, "do not follow redirects")
	runCmd.Flags().IntVar(&runFlags.pool, "pool", engine.DefaultMaxPoolSize, "max connection pool size")
	runCmd.Flags().BoolVar(&runFlags.plain, "plain", false, "disable the interactive progress view")
	runCmd.Flags().StringVar(&runFlags.exportFormat, "export", "", "export measurements (json or csv)")
	runCmd.Flags().StringVar(&runFlags.exportFile, "export-file", "", "export destination (default stdout)")
	runCmd.Flags().StringVarP(&runFlags.profileName, "profile", "p", "", "load a saved profile by name")
	runCmd.Flags().StringVar(&runFlags.saveProfile, "save-profile", "", "save this configuration under a name")

	rootCmd.PersistentFlags().StringVar(&runFlags.profilesFile, "profiles-file", "profiles.yaml", "path to the profiles file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(profilesCmd)
}

// buildConfig resolves the profile (if any), then lets explicitly set flags
// override it.
func buildConfig(cmd *cobra.Command, args []string) (*engine.Config, error) {
	var cfg *engine.Config

	if runFlags.profileName != "" {
		f, err := profile.Load(runFlags.profilesFile)
		if err != nil {
			return nil, err
		}
		p := f.Find(runFlags.profileName)
		if p == nil {
			return nil, fmt.Errorf("profile %q not found in %s", runFlags.profileName, runFlags.profilesFile)
		}
		cfg = p.Config()
	} else {
		if len(args) == 0 {
			return nil, fmt.Errorf("a target URL or --profile is required")
		}
		cfg = engine.NewConfig(args[0])
	}

	if len(args) > 0 {
		cfg.TargetURL = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("users") {
		cfg.ConcurrentUsers = runFlags.users
	}
	if flags.Changed("requests") {
		cfg.RequestsPerUser = runFlags.requests
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = runFlags.timeout
	}
	if flags.Changed("delay") {
		cfg.RequestDelay = runFlags.delay
	}
	if flags.Changed("method") {
		cfg.Method = runFlags.method
	}
	if flags.Changed("body") {
		cfg.Body = runFlags.body
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = runFlags.userAgent
	}
	if flags.Changed("insecure") {
		cfg.InsecureSkipVerify = runFlags.insecure
	}
	if flags.Changed("no-redirects") {
		cfg.FollowRedirects = !runFlags.noRedirects
	}
	if flags.Changed("pool") {
		cfg.MaxPoolSize = runFlags.pool
	}

	if len(runFlags.headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(runFlags.headers))
		}
		for _, h := range runFlags.headers {
			key, value, ok := strings.Cut(h, ":")
			if !ok {
				return nil, fmt.Errorf("invalid header %q, expected 'Key: Value'", h)
			}
			cfg.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}

	return cfg, nil
}

func runStressTest(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if runFlags.saveProfile != "" {
		if err := saveProfile(cfg, runFlags.saveProfile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved profile %q to %s\n", runFlags.saveProfile, runFlags.profilesFile)
	}

	run, err := engine.Start(cfg)
	if err != nil {
		return err
	}

	if runFlags.plain {
		waitPlain(run)
	} else {
		if err := tui.Run(run); err != nil {
			// The engine keeps running without a screen; fall back to waiting.
			fmt.Fprintf(os.Stderr, "progress view unavailable: %v\n", err)
			waitPlain(run)
		}
	}
	run.Wait()

	report := run.Report(engine.DefaultThresholds())
	fmt.Println(tui.RenderReport(report))

	if runFlags.exportFormat != "" {
		return exportRun(report, run.Measurements())
	}
	return nil
}

// waitPlain blocks until the run finishes, printing one progress line per
// second and cancelling the run on interrupt.
func waitPlain(run *engine.Run) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-run.Done():
			return
		case <-interrupt:
			fmt.Fprintln(os.Stderr, "Stopping, letting in-flight requests finish...")
			run.Cancel()
		case <-ticker.C:
			snap := run.Snapshot()
			fmt.Fprintf(os.Stderr, "%d/%d completed (%.0f%%), %d in flight\n",
				snap.Completed, snap.Planned, snap.Progress()*100, snap.InFlight)
		}
	}
}

func exportRun(report *engine.Report, measurements []*engine.Measurement) error {
	out := os.Stdout
	if runFlags.exportFile != "" {
		f, err := os.Create(runFlags.exportFile)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch runFlags.exportFormat {
	case "json":
		return export.WriteJSON(out, report, measurements)
	case "csv":
		return export.WriteCSV(out, measurements)
	default:
		return fmt.Errorf("unknown export format %q, expected json or csv", runFlags.exportFormat)
	}
}

func saveProfile(cfg *engine.Config, name string) error {
	f, err := profile.Load(runFlags.profilesFile)
	if err != nil {
		return err
	}
	f.Put(profile.Profile{
		Name:             name,
		URL:              cfg.TargetURL,
		Method:           cfg.Method,
		Users:            cfg.ConcurrentUsers,
		RequestsPerUser:  cfg.RequestsPerUser,
		TimeoutSec:       int(cfg.RequestTimeout / time.Second),
		DelayMs:          int(cfg.RequestDelay / time.Millisecond),
		Headers:          cfg.Headers,
		Body:             cfg.Body,
		UserAgent:        cfg.UserAgent,
		Insecure:         cfg.InsecureSkipVerify,
		DisableRedirects: !cfg.FollowRedirects,
		PoolSize:         cfg.MaxPoolSize,
	})
	return f.Save(runFlags.profilesFile)
}
