// Package main is the entry point for the Screen Time Dashboard.
// It runs the Bubble Tea TUI by default, or the HTTP API, an importer or a
// one-shot analysis depending on the subcommand.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/screentime-dashboard-tui/internal/api"
	"github.com/j-veylop/screentime-dashboard-tui/internal/app"
	"github.com/j-veylop/screentime-dashboard-tui/internal/config"
	"github.com/j-veylop/screentime-dashboard-tui/internal/logger"
	"github.com/j-veylop/screentime-dashboard-tui/internal/models"
	"github.com/j-veylop/screentime-dashboard-tui/internal/services"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/screentime-dashboard-tui/internal/ui/tabs/trends"
	"github.com/j-veylop/screentime-dashboard-tui/internal/version"
)

func main() {
	args := os.Args[1:]

	// Handle version flag
	if len(args) > 0 && (args[0] == "-v" || args[0] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	command := ""
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	// The TUI owns the terminal, so it only logs to a file.
	logOut, closeLog, err := logOutput(cfg, command == "")
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Setup(cfg.LogLevel, logOut)

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	switch command {
	case "":
		return runTUI(cfg, svcManager)
	case "serve":
		return runServe(cfg, svcManager)
	case "import":
		if len(args) != 1 {
			return errors.New("usage: sdt import <file>")
		}
		return runImport(svcManager, args[0])
	case "analyze":
		user := cfg.UserID
		if len(args) > 0 {
			user = args[0]
		}
		return runAnalyze(svcManager, user)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func logOutput(cfg *config.Config, tui bool) (io.Writer, func(), error) {
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}
	if tui {
		return io.Discard, func() {}, nil
	}
	return os.Stderr, func() {}, nil
}

func runTUI(cfg *config.Config, svcManager *services.Manager) error {
	model := app.NewModel(svcManager)

	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, cfg.Thresholds),
		trends.New(state, model.GetCommands()),
		info.New(state, cfg),
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

func runServe(cfg *config.Config, svcManager *services.Manager) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return api.New(svcManager).ListenAndServe(ctx, cfg.APIAddr)
}

func runImport(svcManager *services.Manager, path string) error {
	res, err := svcManager.Import(context.Background(), path)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d sessions for %d users", len(res.Sessions), len(res.Users()))
	if res.Skipped > 0 {
		fmt.Printf(" (%d rows skipped)", res.Skipped)
	}
	fmt.Println()
	return nil
}

func runAnalyze(svcManager *services.Manager, user string) error {
	report, err := svcManager.Analyze(context.Background(), user)
	if err != nil {
		return err
	}
	out := struct {
		UserID     string `json:"user_id"`
		AnalysisID string `json:"analysis_id"`
		*models.AnalysisResult
		Summary models.WindowSummary `json:"three_day_summary"`
	}{
		UserID:         report.UserID,
		AnalysisID:     report.ID,
		AnalysisResult: report.Result,
		Summary:        report.Summary,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printUsage() {
	fmt.Println(`Screen Time Dashboard - screen-time addiction risk analysis

Usage:
  sdt [command] [flags]

Commands:
  (none)          Run the terminal dashboard
  serve           Run the HTTP API
  import <file>   Import sessions from a .json or .xlsx file
  analyze [user]  Analyze a user's recent window and print JSON

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Trends, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  t               Toggle history range (Trends)
  r               Re-analyze
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATABASE_PATH           SQLite database path
  MODEL_PATH              Trained risk model file (watched for changes)
  MODEL_MIN_CONFIDENCE    Minimum model confidence (default: 0.6)
  USER_ID                 User shown in the dashboard (default: default)
  WINDOW_DAYS             Days per analysis window (default: 3)
  REFRESH_INTERVAL        Re-analysis interval (default: 30s)
  API_ADDR                HTTP listen address (default: :8080)
  LOG_LEVEL, LOG_PATH     Logging level and file

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/screentime-tui/.env
  - ~/.screentime/.env`)
}
