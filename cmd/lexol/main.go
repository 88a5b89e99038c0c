package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lexol/internal/bot"
	"lexol/internal/channel"
	"lexol/internal/config"
	"lexol/internal/gateway"
	"lexol/internal/metrics"
	"lexol/internal/store"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "lexol",
		Short: "Lexol: Discord chatbot backed by free text-completion models",
		Long:  "Lexol binds one channel per server to a text-completion model and answers every message posted there.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: ~/.lexol/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(runCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists at %s", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve",
		RunE:  runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	// An unset BOT_TOKEN leaves the ${BOT_TOKEN} placeholder in place.
	if cfg.Discord.Token == "" || cfg.Discord.Token == "${BOT_TOKEN}" {
		return fmt.Errorf("discord.token is not configured")
	}

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.General.LogLevel)}))

	// Graceful shutdown on signals.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bindings, err := store.NewSQLiteStore(cfg.General.DBPath, logger)
	if err != nil {
		return err
	}
	defer bindings.Close()

	gw := gateway.NewClient(cfg.Backends, logger)

	discord := channel.NewDiscord(channel.DiscordConfig{
		Token:         cfg.Discord.Token,
		GuildID:       cfg.Discord.GuildID,
		ReplyFilename: cfg.Chatbot.ReplyFilename,
		Logger:        logger,
	})

	router := bot.NewRouter(bindings, gw, discord, bot.NewFetcher(), bot.RouterConfig{
		MaxInlineLen:    cfg.Chatbot.MaxInlineLen,
		SlowmodeSeconds: cfg.Chatbot.SlowmodeSeconds,
		ReplyFilename:   cfg.Chatbot.ReplyFilename,
	}, logger)

	lifecycle := bot.NewLifecycle(bindings, discord, bot.LifecycleConfig{
		ChannelName:     cfg.Chatbot.ChannelName,
		SlowmodeSeconds: cfg.Chatbot.SlowmodeSeconds,
	}, logger)

	discord.Bind(router, lifecycle)

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Endpoint)
	}

	return discord.Start(ctx)
}

func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Collector.Handler())
	logger.Info("metrics endpoint listening", "addr", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		logger.Error("metrics endpoint failed", "err", err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
