package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/fluttertools/winnow/internal/cache"
	"github.com/fluttertools/winnow/internal/progress"
	"github.com/fluttertools/winnow/pkg/analyzer/unused"
	"github.com/fluttertools/winnow/pkg/config"
	"github.com/fluttertools/winnow/pkg/models"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "winnow",
		Usage:   "Find unused resources in Flutter projects",
		Version: version,
		Description: `Winnow statically analyzes a Flutter project and reports classes,
methods and functions, pubspec dependencies, and declared assets that
are never referenced from the project's lib sources.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (YAML, TOML, or JSON)",
				EnvVars: []string{"WINNOW_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable the per-file extraction cache",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Maximum concurrent file workers (0 = auto)",
			},
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			classesCmd(),
			methodsCmd(),
			packagesCmd(),
			assetsCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// projectRoot resolves the single positional argument. A missing
// argument is a usage error (exit 2); a path that is not an existing
// directory exits 1.
func projectRoot(c *cli.Context) (string, error) {
	if c.Args().Len() == 0 {
		return "", cli.Exit(fmt.Sprintf("usage: winnow %s <project-root>", c.Command.Name), 2)
	}
	root, err := filepath.Abs(c.Args().First())
	if err != nil {
		return "", cli.Exit(fmt.Sprintf("invalid path %s: %v", c.Args().First(), err), 2)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", cli.Exit(fmt.Sprintf("project root %s is not a directory", c.Args().First()), 1)
	}
	return root, nil
}

func loadConfig(c *cli.Context, root string) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(root, "."), nil
}

// runAnalysis wires config and flags into the analyzer and produces the
// full report for root.
func runAnalysis(c *cli.Context, root string, cfg *config.Config) (*models.Report, error) {
	quiet := c.Bool("quiet")
	keepAlive := append(cfg.Analysis.KeepAlive, c.StringSlice("keep-alive")...)
	excludes := append(cfg.Exclude.Patterns, c.StringSlice("exclude")...)
	workers := cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	opts := []unused.Option{
		unused.WithKeepAlive(keepAlive),
		unused.WithExcludePatterns(excludes),
		unused.WithWorkers(workers),
		unused.WithErrorHandler(func(path string, err error) {
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			}
		}),
	}

	if cfg.Cache.Enabled && !c.Bool("no-cache") {
		store, err := cache.New(filepath.Join(root, cfg.Cache.Dir), cfg.Cache.TTL, true)
		if err != nil {
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			}
		} else {
			opts = append(opts, unused.WithCache(store))
		}
	}

	a := unused.New(opts...)
	files, err := a.CollectFiles(root)
	if err != nil {
		return nil, err
	}

	tracker := progress.NewTracker("Analyzing project...", len(files), quiet)
	report, err := a.AnalyzeProjectWithProgress(c.Context, root, files, tracker.Tick)
	if err != nil {
		tracker.FinishError(err)
		return nil, err
	}
	tracker.FinishSuccess()
	return report, nil
}
