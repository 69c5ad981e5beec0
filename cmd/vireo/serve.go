package main

import (
	"fmt"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/vireo-ui/vireo/internal/config"
	"github.com/vireo-ui/vireo/pkg/live"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		title      string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live server",
		Long: `Start the live server with the built-in demo application.

Configuration is read from vireo.json in the working directory or any
parent. Flags override the file.

Examples:
  vireo serve
  vireo serve --addr=:3000
  vireo serve --config=./deploy/vireo.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, addr, title, logLevel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to vireo.json")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "Page title (overrides config)")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level: debug, info, warn, error")

	return cmd
}

func runServe(configPath, addr, title, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	lc := cfg.LiveConfig().WithLogger(logger)
	if addr != "" {
		lc.WithAddress(addr)
	}
	if title != "" {
		lc.WithTitle(title)
	}

	printBanner()
	fmt.Println()
	if cfg.Path() != "" {
		info("config  %s", cfg.Path())
	} else {
		info("config  defaults (no vireo.json found)")
	}
	info("listen  http://%s", lc.Address)
	fmt.Println()

	srv := live.NewServer(demoRoot, lc)
	return srv.Run()
}

// loadConfig resolves the configuration: an explicit path, then the
// nearest vireo.json, then defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if _, err := config.FindProjectRoot(wd); err != nil {
		return config.New(), nil
	}
	return config.LoadFromWorkingDir()
}

// buildLogger fans log records out to the terminal and, when
// configured, a JSON file.
func buildLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level := cfg.LogLevel()
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	closeLog := func() {}

	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		closeLog = func() { f.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeLog, nil
}
