// /internal/config/config.go
package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken  string   `env:"DISCORD_TOKEN,required"`
	ServerName    string   `env:"DISCORD_SERVER_NAME"`
	TextChannel   string   `env:"DISCORD_TEXT_CHANNEL" envDefault:"music"`
	VoiceChannel  string   `env:"DISCORD_VOICE_CHANNEL" envDefault:"Music"`
	CommandPrefix string   `env:"COMMAND_PREFIX" envDefault:"!"`
	AdminIDs      []string `env:"ADMIN_IDS" envSeparator:","`
	AliasesPath   string   `env:"ALIASES_PATH" envDefault:"aliases.json"`
	HistoryPath   string   `env:"HISTORY_PATH" envDefault:"history.json"`
	AutoPlayPath  string   `env:"AUTOPLAY_PATH" envDefault:"autoplaylist.txt"`
	AnnounceNP    bool     `env:"ANNOUNCE_NOW_PLAYING" envDefault:"true"`
	AutoPlay      bool     `env:"AUTOPLAY" envDefault:"false"`
	YouTubeAPIKey string   `env:"YOUTUBE_API_KEY"`
	YouTubeProxy  string   `env:"YOUTUBE_PROXY"`
	YouTubeRPS    float64  `env:"YOUTUBE_RPS" envDefault:"5"`
	StreamParsers []string `env:"STREAM_PARSERS" envSeparator:"," envDefault:"kkdai-link,ytdlp-link"`
	PurgeLimit    int      `env:"PURGE_LIMIT" envDefault:"100"`
	StatusAddr    string   `env:"STATUS_ADDR"`
	LogLevel      string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string   `env:"LOG_FILE"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "!"
	}
	return &cfg, nil
}

// IsAdmin reports whether userID is in the static admin allowlist.
func (c *Config) IsAdmin(userID string) bool {
	return slices.Contains(c.AdminIDs, userID)
}
