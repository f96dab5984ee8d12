package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/idilsaglam/sqltodo/internal/cli"
	"github.com/idilsaglam/sqltodo/internal/config"
	"github.com/idilsaglam/sqltodo/internal/logging"
	"github.com/idilsaglam/sqltodo/internal/model"
	"github.com/idilsaglam/sqltodo/internal/store/sqlite"
	"github.com/idilsaglam/sqltodo/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand); they win over env and config.
	dbPath := flag.String("db", "", "database file (default $XDG_DATA_HOME/sqltodo/todos.db)")
	theme := flag.String("theme", "", "classic, neon or mono")
	filter := flag.String("filter", "", "default filter: all, done or undone")
	logPath := flag.String("log", "", "log file (default $XDG_STATE_HOME/sqltodo/sqltodo.log)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	groupPending := flag.Bool("group", false, "group output by pending/done")
	noColor := flag.Bool("no-color", false, "disable ANSI colours")
	forceColor := flag.Bool("force-color", false, "colour output even when not a terminal")
	saveConfig := flag.Bool("save-config", false, "write the effective settings to the config file and exit")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *filter != "" {
		f, err := model.ParseFilter(*filter)
		if err != nil {
			ui.Fail(os.Stderr, err.Error())
			os.Exit(2)
		}
		cfg.DefaultFilter = string(f)
	}
	if *logPath != "" {
		cfg.LogFile = *logPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg = config.Normalize(cfg)

	if *saveConfig {
		os.Exit(save(cfg))
	}
	os.Exit(run(flag.Args(), cfg, *groupPending, *forceColor, *noColor))
}

func save(cfg config.Config) int {
	path, err := config.ConfigPath()
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	if err := config.Save(path, cfg); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	ui.OK(os.Stdout, "saved "+path)
	return 0
}

func run(args []string, cfg config.Config, group, forceColor, noColor bool) int {
	ui.SetTheme(cfg.Theme)
	if forceColor || noColor {
		ui.SetColorForcing(forceColor, noColor)
	}

	if cfg.LogFile == "" {
		p, err := logging.DefaultLogPath()
		if err != nil {
			ui.Fail(os.Stderr, err.Error())
			return 1
		}
		cfg.LogFile = p
	}
	logger, closeLog, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer closeLog()

	if cfg.DBPath == "" {
		p, err := sqlite.DefaultDBPath()
		if err != nil {
			ui.Fail(os.Stderr, err.Error())
			return 1
		}
		cfg.DBPath = p
	}
	store, err := sqlite.Open(cfg.DBPath, sqlite.WithLogger(logger))
	if err != nil {
		logger.Error("open store failed", "path", cfg.DBPath, "err", err)
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("close store failed", "err", err)
		}
	}()
	logger.Debug("store opened", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.Run(ctx, args, cli.Options{
		Store:  store,
		Log:    logger,
		Group:  group,
		Filter: cfg.Filter(),
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	return code
}
