package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/vxpredict/predict-tui/internal/api"
	"github.com/vxpredict/predict-tui/internal/auth"
	"github.com/vxpredict/predict-tui/internal/config"
	"github.com/vxpredict/predict-tui/internal/logger"
	"github.com/vxpredict/predict-tui/internal/mock"
	"github.com/vxpredict/predict-tui/internal/storage"
	"github.com/vxpredict/predict-tui/internal/tui"
)

func main() {
	app := &cli.App{
		Name:  "predict-tui",
		Usage: "terminal chat client for the Vx Predict forecasting backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the config file",
				Value: config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "backend base URL (overrides config)",
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:  "mock",
				Usage: "run a mock Vx Predict backend for local development",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "port",
						Usage: "port to listen on",
						Value: 8000,
					},
				},
				Action: func(c *cli.Context) error {
					return mock.NewServer(c.Int("port")).Start()
				},
			},
			{
				Name:   "logout",
				Usage:  "forget the stored API key",
				Action: runLogout,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if backend := c.String("backend"); backend != "" {
		cfg.BackendURL = backend
	}

	if err := logger.Init(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.File); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	creds := auth.NewStore(cfg.DataDir)
	if err := creds.Load(); err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	recent, err := storage.OpenRecentStore(cfg.DataDir)
	if err != nil {
		logger.Warnf("open session cache: %v", err)
		recent = nil
	}
	if recent != nil {
		defer recent.Close()
	}

	shared := &tui.SharedState{}
	client := api.NewClient(cfg.BackendURL,
		api.WithTokenSource(creds),
		api.WithUnauthorizedHandler(func() {
			shared.Send(tui.UnauthorizedMsg{})
		}),
	)

	model := tui.New(&cfg, client, creds, recent, shared)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	model.SetProgram(p)

	_, err = p.Run()
	return err
}

func runLogout(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	creds := auth.NewStore(cfg.DataDir)
	if err := creds.Load(); err != nil {
		return err
	}
	if !creds.Authenticated() {
		fmt.Println("No stored API key.")
		return nil
	}
	if err := creds.Clear(); err != nil {
		return err
	}
	fmt.Println("API key cleared.")
	return nil
}
