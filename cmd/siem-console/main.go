package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/siem-console/tui/internal/app"
	"github.com/siem-console/tui/internal/client"
	"github.com/siem-console/tui/internal/config"
	"github.com/siem-console/tui/internal/logger"
	"github.com/siem-console/tui/internal/session"
	"github.com/siem-console/tui/internal/views/login"
)

func main() {
	configPath := flag.String("config", "siem-console.yaml", "Path to the YAML config file")
	baseURL := flag.String("url", "", "Backend base URL (overrides api.base_url)")
	check := flag.Bool("check", false, "Query /api/health, print the result and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.API.BaseURL = *baseURL
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	store := session.NewStore()
	httpClient := client.NewHTTPClient(cfg.API.BaseURL, store, cfg.API.Timeout, logger.Component(log, "client"))

	if *check {
		os.Exit(runCheck(httpClient, cfg.API.Timeout))
	}

	opts := app.Options{
		Backend: httpClient,
		Probe:   login.ProbeSummary(httpClient),
		Store:   store,
		Config:  cfg,
		Log:     log,
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log.Info("starting", zap.String("base_url", cfg.API.BaseURL))
	p := tea.NewProgram(app.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCheck(c *client.HTTPClient, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	h, err := c.GetHealth(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: unreachable: %v\n", c.BaseURL(), err)
		return 1
	}
	fmt.Printf("%s: %s\n", c.BaseURL(), h.Status)

	names := make([]string, 0, len(h.Services))
	for name := range h.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %s\n", name, h.Services[name])
	}
	return 0
}
