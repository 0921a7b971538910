// Package main is the entry point for the Claude token monitor.
// It loads configuration, starts the services and runs the Bubble Tea program.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/token-monitor-tui/internal/app"
	"github.com/j-veylop/token-monitor-tui/internal/config"
	"github.com/j-veylop/token-monitor-tui/internal/logger"
	"github.com/j-veylop/token-monitor-tui/internal/services"
	"github.com/j-veylop/token-monitor-tui/internal/services/usage"
	"github.com/j-veylop/token-monitor-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/token-monitor-tui/internal/ui/tabs/history"
	"github.com/j-veylop/token-monitor-tui/internal/ui/tabs/info"
	"github.com/j-veylop/token-monitor-tui/internal/version"
)

const onceTimeout = 2 * time.Minute

func main() {
	once := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v", "--version":
			fmt.Println(version.Info())
			os.Exit(0)
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--once":
			once = true
		default:
			fmt.Fprintf(os.Stderr, "Unknown flag: %s\n\n", arg)
			printUsage()
			os.Exit(2)
		}
	}

	if err := run(once); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ce *usage.CommandError
		if errors.As(err, &ce) {
			if hint := ce.Hint(); hint != "" {
				fmt.Fprintf(os.Stderr, "\n%s\n", hint)
			}
		}
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run(once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile := logger.Init(logger.Options{Path: cfg.LogPath, Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	defer func() { _ = logFile.Close() }()
	logger.Info("starting", "version", version.GetVersion(), "once", once)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	if once {
		return runOnce(cfg, svcManager)
	}

	svcManager.Start()

	model := app.NewModel(svcManager)

	state := model.GetState()
	state.SetPeriod(cfg.DefaultPeriod)
	state.SetAdaptive(cfg.AdaptiveWarnings)
	state.SetLocale(cfg.Locale)

	tabs := []app.Tab{
		dashboard.New(state),
		history.New(state, svcManager),
		info.New(state, cfg, svcManager),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// runOnce fetches usage a single time and prints a plain report.
func runOnce(cfg *config.Config, mgr *services.Manager) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, onceTimeout)
	defer cancel()

	snap, err := mgr.RefreshNow(ctx)
	if err != nil {
		return err
	}
	_, pattern := mgr.Latest()

	return writeReport(os.Stdout, reportOptions{
		Period:   cfg.DefaultPeriod,
		Locale:   cfg.Locale,
		Adaptive: cfg.AdaptiveWarnings,
	}, snap, pattern)
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Claude Token Monitor - token usage and cost from ccusage

Usage:
  ctm [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information
  --once          Print a one-shot report for the default period and exit

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  d/w/m           Show today, this week or this month
  p               Cycle period
  a               Toggle adaptive insights
  j/k, Up/Down    Scroll
  r               Refresh now
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH           SQLite history path
  CCUSAGE_PATH            ccusage executable (default: auto-detect)
  NODE_PATH               node executable (default: auto-detect)
  CLAUDE_DATA_DIR         Claude transcript directory to watch
  REFRESH_INTERVAL        Polling interval (default: 60s)
  DEFAULT_PERIOD          day, week or month (default: day)
  ADAPTIVE_WARNINGS       Pattern-based insights (default: true)
  DESKTOP_NOTIFICATIONS   Desktop alerts on warning changes (default: true)
  LOCALE                  Number formatting locale (default: en)
  LOG_PATH, LOG_LEVEL     Log file and level (default: info)
  LOG_FORMAT              Set to pretty for colored log lines

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/ctm/.env
  - ~/.claude/.env`)
}
