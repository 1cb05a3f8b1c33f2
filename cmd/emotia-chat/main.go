// ABOUTME: Entry point for the emotia chat client
// ABOUTME: Wires config, stores, streams and the reply engine into the TUI

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/onet/emotia/internal/config"
	"github.com/onet/emotia/internal/controller"
	"github.com/onet/emotia/internal/enrich"
	"github.com/onet/emotia/internal/identity"
	"github.com/onet/emotia/internal/memory"
	"github.com/onet/emotia/internal/persona"
	"github.com/onet/emotia/internal/presence"
	"github.com/onet/emotia/internal/reply"
	"github.com/onet/emotia/internal/store"
	"github.com/onet/emotia/internal/stream"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                      _   _
   ___ _ __ ___   ___ | |_(_) __ _
  / _ \ '_ ' _ \ / _ \| __| |/ _' |
 |  __/ | | | | | (_) | |_| | (_| |
  \___|_| |_| |_|\___/ \__|_|\__,_|
`

// getConfigPath returns the path to the client config file.
// Priority: EMOTIA_CONFIG env var > XDG_CONFIG_HOME/emotia/config.yaml > ~/.config/emotia/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("EMOTIA_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "emotia", "config.yaml")
}

// getDataPath returns the path to the emotia data directory.
// Priority: XDG_DATA_HOME/emotia > ~/.local/share/emotia
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "emotia")
}

// defaultConfig is used when no config file exists yet; everything lands in
// the XDG data directory under sensible defaults.
func defaultConfig() *config.Config {
	dataPath := getDataPath()
	return &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dataPath, "chat.db")},
		Memory:   config.MemoryConfig{Path: filepath.Join(dataPath, "memory.bolt")},
		User: config.UserConfig{
			ID:          "local-user",
			DisplayName: "You",
		},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func main() {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	cyan.Print(banner)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			gray.Printf("    no config at %s, using defaults\n\n", configPath)
			cfg = defaultConfig()
		} else {
			fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
			os.Exit(1)
		}
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// The TUI owns stdout, so logs go to a file in the data directory.
	logger, logFile, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logFile.Close()

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening message database: %w", err)
	}
	defer st.Close()

	streams := stream.NewService(st, logger)
	defer streams.Close()

	pres := presence.NewService(logger)
	defer pres.Close()

	mem, err := memory.Open(cfg.Memory.Path, logger)
	if err != nil {
		return fmt.Errorf("opening agent memory: %w", err)
	}
	defer mem.Close()

	pack := persona.Builtin()
	if cfg.Personas.Path != "" {
		pack, err = persona.LoadPack(cfg.Personas.Path)
		if err != nil {
			return fmt.Errorf("loading persona pack: %w", err)
		}
	}

	var replyOpts []reply.Option
	if cfg.Reply.MinThinkDelay > 0 || cfg.Reply.MaxThinkDelay > 0 {
		replyOpts = append(replyOpts, reply.WithDelayRange(cfg.Reply.MinThinkDelay, cfg.Reply.MaxThinkDelay))
	}
	engine := reply.NewEngine(pack, logger, replyOpts...)

	self := identity.Identity{
		ID:          cfg.User.ID,
		DisplayName: cfg.User.DisplayName,
		Kind:        identity.KindLive,
	}
	if self.DisplayName == "" {
		self.DisplayName = self.ID
	}

	dir := identity.NewDirectory(pack.Identities())
	dir.Register(self)

	sink := newUISink()
	ctrl := controller.New(self, streams, pres, mem, engine, sink, logger,
		controller.WithEnricher(enrich.Enhance))
	defer ctrl.Close()

	logger.Info("emotia chat starting",
		"user", self.ID,
		"database", cfg.Database.Path,
		"memory", cfg.Memory.Path)

	return runTUI(self, dir, ctrl, sink)
}

// setupLogger writes structured logs to emotia.log in the data directory.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, *os.File, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logPath := filepath.Join(getDataPath(), "emotia.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(logFile, opts)
	} else {
		handler = slog.NewTextHandler(logFile, opts)
	}

	return slog.New(handler), logFile, nil
}
