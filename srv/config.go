package srv

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configurable server settings.
type Config struct {
	// Database
	DBPath string `env:"DB_PATH"`

	// Discord
	PublicKey     string `env:"DISCORD_PUBLIC_KEY"`
	BotToken      string `env:"DISCORD_BOT_TOKEN"`
	ApplicationID string `env:"DISCORD_APPLICATION_ID"`
	APIBase       string `env:"DISCORD_API_BASE"`

	// Update posts
	UpdatesChannelID string        `env:"UPDATES_CHANNEL_ID"`
	UpdatesWebhook   string        `env:"UPDATES_WEBHOOK_URL"`
	ChangelogPath    string        `env:"UPDATES_CHANGELOG_PATH"`
	SealPath         string        `env:"UPDATES_SEAL_PATH"`
	FooterPath       string        `env:"UPDATES_FOOTER_PATH"`
	UpdatesDebounce  time.Duration `env:"UPDATES_DEBOUNCE"`
	ProjectName      string        `env:"UPDATES_PROJECT_NAME"`

	// Duels
	DuelIdleTimeout time.Duration `env:"DUEL_IDLE_TIMEOUT"`

	// Interaction Rate Limiting, per Discord user
	InteractionRateLimit    int           `env:"INTERACTION_RATE_LIMIT"`    // actions per interval
	InteractionRateInterval time.Duration `env:"INTERACTION_RATE_INTERVAL"` // interval for rate limit
	InteractionRateBurst    int           `env:"INTERACTION_RATE_BURST"`    // max burst capacity

	// API Rate Limiting, per IP
	APIRateLimit    int           `env:"API_RATE_LIMIT"`
	APIRateInterval time.Duration `env:"API_RATE_INTERVAL"`
	APIRateBurst    int           `env:"API_RATE_BURST"`
	// Proxies allowed to set X-Forwarded-For, as CIDRs or addresses
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Files
	AssetsDir string `env:"ASSETS_DIR"`
	DataDir   string `env:"DATA_DIR"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath: "db.sqlite3",

		ChangelogPath:   "CHANGELOG.md",
		SealPath:        "assets/seal.png",
		FooterPath:      "assets/footer.png",
		UpdatesDebounce: 2 * time.Second,
		ProjectName:     "Lowlife Society",

		DuelIdleTimeout: 15 * time.Minute,

		// Interactions: 20 per 10 seconds, burst of 8
		InteractionRateLimit:    20,
		InteractionRateInterval: 10 * time.Second,
		InteractionRateBurst:    8,

		// API: 30 requests per minute, burst of 10
		APIRateLimit:    30,
		APIRateInterval: time.Minute,
		APIRateBurst:    10,

		AssetsDir: "assets",
		DataDir:   "data",
	}
}

// ConfigFromEnv returns a Config populated from environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromMap is ConfigFromEnv over an explicit environment.
func ConfigFromMap(environ map[string]string) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	positive := []struct {
		field string
		ok    bool
	}{
		{"INTERACTION_RATE_LIMIT", c.InteractionRateLimit > 0},
		{"INTERACTION_RATE_INTERVAL", c.InteractionRateInterval > 0},
		{"INTERACTION_RATE_BURST", c.InteractionRateBurst > 0},
		{"API_RATE_LIMIT", c.APIRateLimit > 0},
		{"API_RATE_INTERVAL", c.APIRateInterval > 0},
		{"API_RATE_BURST", c.APIRateBurst > 0},
		{"DUEL_IDLE_TIMEOUT", c.DuelIdleTimeout > 0},
		{"UPDATES_DEBOUNCE", c.UpdatesDebounce >= 0},
	}
	for _, p := range positive {
		if !p.ok {
			return ValidationError{Field: p.field, Message: "must be positive"}
		}
	}
	if _, err := ParseTrustedProxies(c.TrustedProxies); err != nil {
		return err
	}
	if c.PublicKey != "" {
		if err := ValidatePublicKey(c.PublicKey); err != nil {
			return err
		}
	}
	if c.UpdatesChannelID != "" {
		if err := ValidateSnowflake("UPDATES_CHANNEL_ID", c.UpdatesChannelID); err != nil {
			return err
		}
	}
	return nil
}
