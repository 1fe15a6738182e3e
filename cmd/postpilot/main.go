package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"postpilot/api"
	"postpilot/config"
	"postpilot/logging"
	"postpilot/session"
	"postpilot/trends"
	"postpilot/tui"
	"postpilot/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	baseURL := flag.String("url", cfg.APIBaseURL, "Backend base URL")
	flag.Parse()

	log := logging.New(cfg.LogFile, cfg.LogLevel)

	// Commands inherit this context; quitting abandons in-flight calls.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(*baseURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(log),
	)

	store := session.NewStore(client, cfg.TokenFile, log)
	client.SetTokenSource(store)
	client.SetUnauthorizedHandler(store.Invalidate)

	flow := workflow.NewController(client, log)
	suggester := trends.NewSuggester(client, cfg.TrendFeeds, log)

	m := tui.NewModel(ctx, store, flow, suggester, client, log)
	program := tea.NewProgram(m, tea.WithAltScreen())

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
