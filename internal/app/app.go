package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gabbwatch/gabb"
	"github.com/gabbwatch/gabb/internal/config"
	"github.com/gabbwatch/gabb/internal/state"
	"github.com/gabbwatch/gabb/internal/ui"
)

// Options configure the gabbwatch application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/gabbwatch/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
}

// Run boots the gabbwatch TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	prefs := config.LoadPrefs(opts.PrefsPath)

	logger := newFileLogger(cfg.LogPath)

	client, err := gabb.New(gabb.Config{
		Username: cfg.Username,
		Password: cfg.Password,
		BaseURL:  cfg.BaseURL,
		AppBuild: cfg.AppBuild,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("init filip client: %w", err)
	}

	// Fail fast on bad credentials instead of starting a dashboard that can
	// never show data.
	if _, err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	store := &state.Store{}

	interval := cfg.PollInterval
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Populate the store before the UI draws its first frame, then keep it
	// fresh in the background.
	refresh(ctx, store, client, logger)
	StartPoller(ctx, store, client, logger, interval)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		ThemeName: prefs.Theme,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath,
	}
	return ui.Run(uiOpts)
}

// newFileLogger builds the application logger. The TUI owns the terminal, so
// log lines go to a file; when the file cannot be opened the logger swallows
// everything rather than scribbling over the alt screen.
func newFileLogger(path string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if path == "" {
		return logger
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return logger
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return logger
	}
	logger.SetOutput(file)
	return logger
}
