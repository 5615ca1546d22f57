package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/smellscan/internal/config"
	"github.com/standardbeagle/smellscan/internal/debug"
	"github.com/standardbeagle/smellscan/internal/engine"
	smerrors "github.com/standardbeagle/smellscan/internal/errors"
	"github.com/standardbeagle/smellscan/internal/mcp"
	"github.com/standardbeagle/smellscan/internal/report"
	"github.com/standardbeagle/smellscan/internal/types"
	"github.com/standardbeagle/smellscan/internal/version"
	"github.com/standardbeagle/smellscan/internal/watch"
	"github.com/standardbeagle/smellscan/internal/workspace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		debug.CloseDebugLog()
		os.Exit(1)
	}
	debug.CloseDebugLog()
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:                   "smellscan",
		Usage:                  "Find design smells in C# codebases",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.smellscan.kdl or .smellscan.toml)",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory holding the solutions to analyze (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Analyze only documents matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip documents matching glob patterns (e.g., --exclude '**/Generated/**')",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Parallel workers, 0 = one per CPU (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug logs to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug logs to a file under the temp directory",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("debug") && !c.Bool("debug-log") {
				return nil
			}
			debug.EnableDebug = "true"
			debug.SetTimestamps(true)
			debug.SetDebugOutput(stderr)
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(stderr, "Debug log: %s\n", path)
			}
			debug.Log("CLI", "%s\n", version.FullInfo())
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:    "analyze",
				Aliases: []string{"a"},
				Usage:   "Run the detectors and write the recommendations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, json or text (overrides config)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Directory receiving the CSV files (overrides config)",
					},
					&cli.StringSliceFlag{
						Name:  "rule",
						Usage: "Run only the named rules (e.g., --rule NullReturn --rule ErrorFlag)",
					},
					&cli.StringSliceFlag{
						Name:  "disable",
						Usage: "Skip the named rules",
					},
					&cli.IntFlag{
						Name:  "max-occurrences",
						Usage: "Occurrences listed per rule in text output, 0 = all",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:    "metrics",
				Aliases: []string{"m"},
				Usage:   "Print codebase metrics and class coupling without running the detectors",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, json or text",
						Value:   config.FormatText,
					},
				},
				Action: metricsCommand,
			},
			{
				Name:   "rules",
				Usage:  "List the rule catalog",
				Action: rulesCommand,
			},
			{
				Name:  "watch",
				Usage: "Re-run the analysis whenever C# sources change",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: csv, json or text (overrides config)",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Directory receiving the CSV files (overrides config)",
					},
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period before a batch of changes is analyzed (overrides config)",
					},
				},
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the analysis over the Model Context Protocol on stdio",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration",
						Action: configShowCommand,
					},
					{
						Name:   "validate",
						Usage:  "Validate the configuration",
						Action: configValidateCommand,
					},
				},
			},
		},
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithRoot(c.String("config"), c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		abs, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, smerrors.NewFileError("resolve", rootFlag, err)
		}
		cfg.Project.Root = abs
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = config.DeduplicatePatterns(append(cfg.Exclude, excludeFlags...))
	}
	if c.IsSet("workers") {
		cfg.Analysis.Workers = c.Int("workers")
	}
	if rules := c.StringSlice("rule"); len(rules) > 0 {
		cfg.Rules.Only = rules
	}
	if disabled := c.StringSlice("disable"); len(disabled) > 0 {
		cfg.Rules.Disable = append(cfg.Rules.Disable, disabled...)
	}
	if format := c.String("format"); format != "" {
		cfg.Output.Format = strings.ToLower(format)
	}
	if out := c.String("out"); out != "" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return nil, smerrors.NewFileError("resolve", out, err)
		}
		cfg.Output.Dir = abs
	}

	cfg, err = cfg.WithIgnoreFile()
	if err != nil {
		return nil, err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	results, runErr := engine.Run(c.Context, cfg, engine.Options{})
	if results == nil && runErr != nil {
		return runErr
	}
	if err := writeResults(c, cfg, results, c.Int("max-occurrences")); err != nil {
		return err
	}
	reportErrors(c.App.ErrWriter, results, runErr)
	return nil
}

func metricsCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	cfg.Rules.Only = nil
	cfg.Rules.Disable = types.RuleNames()

	results, runErr := engine.Run(c.Context, cfg, engine.Options{})
	if results == nil && runErr != nil {
		return runErr
	}
	if err := writeResults(c, cfg, results, 0); err != nil {
		return err
	}
	reportErrors(c.App.ErrWriter, results, runErr)
	return nil
}

func rulesCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	w := c.App.Writer
	for _, kind := range types.AllRuleKinds() {
		state := "enabled"
		if !registry.Has(kind) {
			state = "disabled"
		}
		fmt.Fprintf(w, "%-30s %-8s %s\n", kind, state, kind.Message())
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	analyze := func(ctx context.Context) {
		results, runErr := engine.Run(ctx, cfg, engine.Options{})
		if ctx.Err() != nil {
			return
		}
		if results == nil && runErr != nil {
			fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", runErr)
			return
		}
		if err := writeResults(c, cfg, results, 0); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
		}
		reportErrors(c.App.ErrWriter, results, runErr)
	}

	w, err := watch.New(watch.Options{
		Root:     cfg.Project.Root,
		Filter:   workspace.OptionsFromConfig(cfg).Filter,
		Debounce: debounce,
		OnChange: func(ctx context.Context, changed []string) {
			fmt.Fprintf(c.App.ErrWriter, "%d files changed, analyzing %s\n", len(changed), cfg.Project.Root)
			analyze(ctx)
		},
	})
	if err != nil {
		return err
	}

	analyze(c.Context)
	fmt.Fprintf(c.App.ErrWriter, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Project.Root)
	return w.Run(c.Context)
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol, so debug output goes to a file
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}
	server, err := mcp.NewServer(cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}
	defer server.Close()

	debug.LogMCP("Starting MCP server with stdio transport...\n")
	if err := server.Start(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return debug.Fatal("MCP server error: %v\n", err)
	}
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "Root:       %s\n", cfg.Project.Root)
	fmt.Fprintf(w, "Workers:    %d\n", cfg.Analysis.Workers)
	fmt.Fprintf(w, "SkipTests:  %t\n", cfg.Analysis.SkipTests)
	fmt.Fprintf(w, "Thresholds: parameters %d, function lines %d, headline block %d\n",
		cfg.Analysis.MaxParameters, cfg.Analysis.MaxFunctionLines, cfg.Analysis.HeadlineBlockSize)
	fmt.Fprintf(w, "Include:    %s\n", strings.Join(cfg.Include, ", "))
	fmt.Fprintf(w, "Exclude:    %s\n", strings.Join(cfg.Exclude, ", "))
	fmt.Fprintf(w, "Blacklist:  %s\n", strings.Join(cfg.Blacklist, ", "))
	fmt.Fprintf(w, "Rules:      only [%s] disable [%s]\n",
		strings.Join(cfg.Rules.Only, ", "), strings.Join(cfg.Rules.Disable, ", "))
	fmt.Fprintf(w, "Output:     %s to %s\n", cfg.Output.Format, cfg.Output.Dir)
	fmt.Fprintf(w, "Watch:      debounce %dms\n", cfg.Watch.DebounceMs)
	return nil
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Fprintf(c.App.Writer, "Configuration validation failed: %v\n", err)
		return err
	}
	if _, err := cfg.Registry(); err != nil {
		fmt.Fprintf(c.App.Writer, "Configuration validation failed: %v\n", err)
		return err
	}
	fmt.Fprintf(c.App.Writer, "Configuration is valid (root %s)\n", cfg.Project.Root)
	return nil
}

// writeResults sends results to the configured destination: CSV files in
// the output directory, or JSON and text on stdout.
func writeResults(c *cli.Context, cfg *config.Config, results []*engine.Result, maxOccurrences int) error {
	switch cfg.Output.Format {
	case config.FormatJSON:
		return report.WriteJSON(c.App.Writer, results)
	case config.FormatText:
		return report.WriteText(c.App.Writer, results, report.TextOptions{MaxOccurrences: maxOccurrences})
	default:
		dir := cfg.Output.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Project.Root, dir)
		}
		written, err := report.WriteFiles(dir, results)
		if err != nil {
			return err
		}
		for _, p := range written {
			fmt.Fprintf(c.App.ErrWriter, "Wrote %s\n", p)
		}
		return nil
	}
}

// reportErrors lists analysis failures on w. They never fail the command:
// a codebase with broken documents still yields a report for the rest.
func reportErrors(w io.Writer, results []*engine.Result, runErr error) {
	if runErr != nil {
		fmt.Fprintf(w, "Warning: %v\n", runErr)
	}
	for _, r := range results {
		if n := len(r.Errors); n > 0 {
			fmt.Fprintf(w, "Warning: %s: %d documents could not be analyzed\n", r.Codebase, n)
		}
	}
}
