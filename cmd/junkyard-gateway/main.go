// junkyard-gateway bridges chat transports to the Junkyard Brawl engine:
// chat text in, ordered game narration out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gfax/junkyard-gateway/pkg/bridge"
	"github.com/gfax/junkyard-gateway/pkg/bus"
	"github.com/gfax/junkyard-gateway/pkg/channels"
	"github.com/gfax/junkyard-gateway/pkg/commands"
	"github.com/gfax/junkyard-gateway/pkg/config"
	"github.com/gfax/junkyard-gateway/pkg/junkyard"
	"github.com/gfax/junkyard-gateway/pkg/logger"
	"github.com/gfax/junkyard-gateway/pkg/outbound"
	"github.com/gfax/junkyard-gateway/pkg/phrases"
	"github.com/gfax/junkyard-gateway/pkg/presenter"
	"github.com/gfax/junkyard-gateway/pkg/session"
	"github.com/gfax/junkyard-gateway/pkg/storage"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "junkyard-gateway:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)

	catalog, err := phrases.Load(cfg.Phrases, cfg.Language)
	if err != nil {
		return err
	}
	// A broken catalog is a deployment defect; fail now, not mid-game.
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("phrase catalog: %w", err)
	}

	history, err := storage.Open(cfg.Storage.HistoryPath)
	if err != nil {
		return err
	}
	defer history.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	mb := bus.NewMessageBus()
	defer mb.Close()

	manager := channels.NewManager()
	if cfg.Channels.Console.Enabled {
		manager.RegisterChannel(channels.NewConsoleChannel(cfg.Channels.Console.UserID, mb))
	}
	if cfg.Channels.Telegram.Enabled {
		manager.RegisterChannel(channels.NewTelegramChannel(cfg.Channels.Telegram.Token, mb))
	}
	if cfg.Channels.Discord.Enabled {
		manager.RegisterChannel(channels.NewDiscordChannel(cfg.Channels.Discord.Token, mb))
	}
	if cfg.Channels.Slack.Enabled {
		manager.RegisterChannel(channels.NewSlackChannel(cfg.Channels.Slack.BotToken, cfg.Channels.Slack.AppToken, mb))
	}
	if cfg.Channels.WebSocket.Enabled {
		manager.RegisterChannel(channels.NewWebSocketChannel(cfg.Channels.WebSocket.Listen, mb))
	}

	queue := outbound.NewQueue(manager, time.Duration(cfg.Gateway.ThrottleMS)*time.Millisecond)
	registry := session.NewRegistry()
	b := bridge.New(registry, queue, history)

	factory := junkyard.NewFactory(
		junkyard.WithCatalog(catalog),
		junkyard.WithPresenter(presenter.New(cfg.Presenter)),
	)
	router := commands.NewRouter(registry, factory, b, catalog,
		time.Duration(cfg.Gateway.AdvertiseDelayMS)*time.Millisecond)

	reaper := session.NewReaper(registry, cfg.Sessions.ReapCron,
		time.Duration(cfg.Sessions.IdleTTLMinutes)*time.Minute)

	manager.StartAll(ctx)
	defer manager.StopAll()

	go queue.Run(ctx)
	go reaper.Run(ctx)

	logger.InfoCF("main", "junkyard gateway up", map[string]interface{}{
		"language":  cfg.Language,
		"presenter": cfg.Presenter,
	})

	router.Run(ctx, mb)
	logger.InfoC("main", "shutting down")
	return nil
}
