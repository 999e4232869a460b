// Package main is the sitegen CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/healthai/sitegen/internal/build"
	"github.com/healthai/sitegen/internal/cli"
	"github.com/healthai/sitegen/internal/config"
	"github.com/healthai/sitegen/internal/deploy"
	"github.com/healthai/sitegen/internal/ingest"
	"github.com/healthai/sitegen/internal/search"
	"github.com/healthai/sitegen/internal/server"
	"github.com/healthai/sitegen/internal/watcher"
	"github.com/healthai/sitegen/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sitegen/config.yaml"

// loadConfig loads config from path. When path is the default, it first
// looks for config.yaml in the current directory (for development); if that
// exists it is used, so that "sitegen serve" from the project dir uses the
// project's config. When neither exists, defaults anchored at the current
// directory apply. Returns the config and the path actually loaded ("" for
// defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		cwd, cwdErr := os.Getwd()
		if cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			cfg, defErr := config.Default(cwd)
			if defErr != nil {
				return nil, "", defErr
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "build":
		runBuild()
	case "check":
		runCheck()
	case "serve":
		runServe()
	case "search":
		runSearch()
	case "deploy":
		runDeploy()
	case "version", "--version", "-v":
		fmt.Printf("sitegen version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and builds the logger shared by every command.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger) {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.String("workbook", cfg.Workbook),
		zap.Bool("debug", debugMode),
	)
	return cfg, logger
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	report, _, err := build.New(cfg, logger).Run()
	if err != nil {
		logger.Fatal("Build failed", zap.Error(err))
	}
	fmt.Printf("Built %s: %d researchers, %d projects, %d publications, %d image(s), %d problem(s) in %dms\n",
		report.OutputDir, report.Researchers, report.Projects, report.Publications,
		report.Artifacts, report.Diagnostics, report.DurationMS)
}

func runCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	format := fs.String("format", "text", "output format: text or json")
	strict := fs.Bool("strict", false, "exit nonzero when any problem is found")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	ds, err := ingest.New(cfg.Root, logger).Run(cfg.Workbook)
	if err != nil {
		logger.Fatal("Check failed", zap.Error(err))
	}
	if err := cli.WriteDiagnostics(os.Stdout, ds.Diagnostics, cli.ParseFormat(*format)); err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}
	if *strict && len(ds.Diagnostics) > 0 {
		os.Exit(1)
	}
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	watch := fs.Bool("watch", false, "rebuild when the workbook, assets, or templates change")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	builder := build.New(cfg, logger)
	report, _, err := builder.Run()
	if err != nil {
		logger.Fatal("Initial build failed", zap.Error(err))
	}

	srv := server.NewServer(&cfg.Server, cfg.Site.OutputDir, logger)
	srv.SetReport(report)

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if *watch {
		paths := []string{cfg.Workbook, cfg.Site.AssetsDir}
		if cfg.Site.TemplatesDir != "" {
			paths = append(paths, cfg.Site.TemplatesDir)
		}
		paths = append(paths, cfg.Watch.Paths...)
		w := watcher.NewWatcher(paths, func(path string) {
			logger.Info("change detected, rebuilding", zap.String("path", path))
			r, _, err := builder.Run()
			if err != nil {
				logger.Warn("rebuild failed", zap.Error(err))
				return
			}
			srv.SetReport(r)
		}, watcher.WithLogger(logger))
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after
// the query to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument, so
// "sitegen search sepsis -limit 5" would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	limit := fs.Int("limit", 10, "maximum number of results")
	format := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sitegen search [flags] <query>\n\n")
		fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	query := buildSearchQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	ds, err := ingest.New(cfg.Root, logger).Run(cfg.Workbook)
	if err != nil {
		logger.Fatal("Failed to read workbook", zap.Error(err))
	}
	idx, err := search.NewIndex(ds)
	if err != nil {
		logger.Fatal("Failed to build search index", zap.Error(err))
	}
	defer idx.Close()

	hits, err := idx.Search(query, *limit)
	if err != nil {
		logger.Fatal("Search failed", zap.Error(err))
	}
	if err := cli.WriteHits(os.Stdout, query, hits, cli.ParseFormat(*format)); err != nil {
		logger.Fatal("Failed to write results", zap.Error(err))
	}
}

func runDeploy() {
	fs := flag.NewFlagSet("deploy", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	skipBuild := fs.Bool("skip-build", false, "upload the existing output directory without rebuilding")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	if !*skipBuild {
		if _, _, err := build.New(cfg, logger).Run(); err != nil {
			logger.Fatal("Build failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	d, err := deploy.NewDeployer(ctx, &cfg.Deploy, logger)
	if err != nil {
		logger.Fatal("Failed to create deployer", zap.Error(err))
	}
	n, err := d.Sync(ctx, cfg.Site.OutputDir)
	if err != nil {
		logger.Fatal("Deploy failed", zap.Error(err))
	}
	fmt.Printf("Uploaded %d object(s) to %s\n", n, cfg.Deploy.Bucket)
}

func printUsage() {
	fmt.Println(`sitegen - spreadsheet-driven research site generator

Usage:
  sitegen <command> [flags]

Commands:
  build     Read the workbook and generate the site
  check     Validate the workbook and report problems without writing output
  serve     Build and serve the site locally (use --watch to rebuild on change)
  search    Query the generated dataset from the command line
  deploy    Build and upload the site to the configured bucket
  version   Print version
  help      Show this help

Flags (all commands):
  -config string
        config file path (default "` + defaultConfigPath + `")
  -debug
        enable debug logging

Examples:
  sitegen build
  sitegen check --strict --format json
  sitegen serve --watch
  sitegen search sepsis prediction
  sitegen deploy --skip-build`)
}
