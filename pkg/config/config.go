// Package config loads gateway settings from config.json with environment
// variable overrides. Env always wins over the file so deployments can keep
// secrets out of it.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Language  string `json:"language" env:"JUNKYARD_LANG"`
	Presenter string `json:"presenter" env:"JUNKYARD_PRESENTER"` // plain | irc | emoji
	LogLevel  string `json:"log_level" env:"JUNKYARD_LOG_LEVEL"`
	Phrases   string `json:"phrases" env:"JUNKYARD_PHRASES"` // optional catalog override path

	Gateway  GatewayConfig  `json:"gateway"`
	Sessions SessionsConfig `json:"sessions"`
	Storage  StorageConfig  `json:"storage"`
	Channels ChannelsConfig `json:"channels"`
}

type GatewayConfig struct {
	// ThrottleMS is the minimum spacing between outbound sends.
	ThrottleMS int `json:"throttle_ms" env:"JUNKYARD_THROTTLE_MS"`
	// AdvertiseDelayMS defers the new-game broadcast so the triggering
	// message settles first on ordering-sensitive transports.
	AdvertiseDelayMS int `json:"advertise_delay_ms" env:"JUNKYARD_ADVERTISE_DELAY_MS"`
}

type SessionsConfig struct {
	ReapCron       string `json:"reap_cron" env:"JUNKYARD_REAP_CRON"`
	IdleTTLMinutes int    `json:"idle_ttl_minutes" env:"JUNKYARD_IDLE_TTL_MINUTES"`
}

type StorageConfig struct {
	HistoryPath string `json:"history_path" env:"JUNKYARD_HISTORY_PATH"`
}

type ChannelsConfig struct {
	Console   ConsoleConfig   `json:"console"`
	Telegram  TelegramConfig  `json:"telegram"`
	Discord   DiscordConfig   `json:"discord"`
	Slack     SlackConfig     `json:"slack"`
	WebSocket WebSocketConfig `json:"websocket"`
}

type ConsoleConfig struct {
	Enabled bool   `json:"enabled" env:"JUNKYARD_CONSOLE_ENABLED"`
	UserID  string `json:"user_id" env:"JUNKYARD_CONSOLE_USER"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled" env:"JUNKYARD_TELEGRAM_ENABLED"`
	Token   string `json:"token" env:"JUNKYARD_TELEGRAM_TOKEN"`
}

type DiscordConfig struct {
	Enabled bool   `json:"enabled" env:"JUNKYARD_DISCORD_ENABLED"`
	Token   string `json:"token" env:"JUNKYARD_DISCORD_TOKEN"`
}

type SlackConfig struct {
	Enabled  bool   `json:"enabled" env:"JUNKYARD_SLACK_ENABLED"`
	BotToken string `json:"bot_token" env:"JUNKYARD_SLACK_BOT_TOKEN"`
	AppToken string `json:"app_token" env:"JUNKYARD_SLACK_APP_TOKEN"`
}

type WebSocketConfig struct {
	Enabled bool   `json:"enabled" env:"JUNKYARD_WS_ENABLED"`
	Listen  string `json:"listen" env:"JUNKYARD_WS_LISTEN"`
}

func defaults() Config {
	return Config{
		Language:  "en",
		Presenter: "plain",
		LogLevel:  "info",
		Gateway: GatewayConfig{
			ThrottleMS:       150,
			AdvertiseDelayMS: 500,
		},
		Sessions: SessionsConfig{
			ReapCron:       "*/10 * * * *",
			IdleTTLMinutes: 120,
		},
		Storage: StorageConfig{
			HistoryPath: "junkyard-history.db",
		},
		Channels: ChannelsConfig{
			Console:   ConsoleConfig{Enabled: true},
			WebSocket: WebSocketConfig{Listen: ":8787"},
		},
	}
}

// Load reads path (missing file is fine: defaults apply) and then overlays
// environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file: defaults plus env
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
