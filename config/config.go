package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"forex-trader/models"
)

// Timeframe binds a human timeframe label to the market data provider's
// granularity code.
type Timeframe struct {
	Label       string
	Granularity string
}

// Config holds all application configuration.
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL" envDefault:"-"`
	OandaAPIKey    string `env:"OANDA_DEMO_KEY" envDefault:"-"`
	OandaAccountID string `env:"OANDA_ACCOUNT_ID" envDefault:"-"`
	OandaEnv       string `env:"OANDA_ENV" envDefault:"practice"`
	GrokAPIKey     string `env:"GROK_API_KEY" envDefault:"-"`

	Symbol       string `env:"SYMBOL" envDefault:"GBP_JPY"`
	CandleCount  int    `env:"CANDLE_COUNT" envDefault:"100"`
	ORBTimeframe string `env:"ORB_TIMEFRAME" envDefault:"15m"`
	ORBMinutes   int    `env:"ORB_MINUTES" envDefault:"15"`
	SwingWindow  int    `env:"SWING_WINDOW" envDefault:"3"`
	ZoneLookback int    `env:"ZONE_LOOKBACK" envDefault:"50"`

	ModelName      string `env:"MODEL_NAME" envDefault:"Grok-4"`
	PromptPath     string `env:"PROMPT_PATH" envDefault:"prompt.json"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	TelegramToken  string `env:"TELEGRAM_TOKEN" envDefault:"-"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	// Sessions is the trading calendar the session clock classifies
	// against, in declaration order (earlier wins on overlap).
	Sessions []models.Session

	// Timeframes is the fixed ordered set the multi-timeframe
	// aggregator covers. Order is the rendering order of the report.
	Timeframes []Timeframe
}

// DefaultSessions is the standard forex calendar: the three major
// sessions in UTC. Tokyo is declared first so it wins the London
// overlap at 07:00.
func DefaultSessions() []models.Session {
	return []models.Session{
		{Name: "Tokyo", Start: models.TimeOfDay{Hour: 0}, End: models.TimeOfDay{Hour: 8}, Major: true},
		{Name: "London", Start: models.TimeOfDay{Hour: 7}, End: models.TimeOfDay{Hour: 15}, Major: true},
		{Name: "New York", Start: models.TimeOfDay{Hour: 12}, End: models.TimeOfDay{Hour: 21}, Major: true},
	}
}

// DefaultTimeframes maps timeframe labels to OANDA granularity codes.
func DefaultTimeframes() []Timeframe {
	return []Timeframe{
		{Label: "4h", Granularity: "H4"},
		{Label: "1h", Granularity: "H1"},
		{Label: "15m", Granularity: "M15"},
	}
}

// Load initializes configuration from environment variables.
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		OandaAPIKey:    os.Getenv("OANDA_DEMO_KEY"),
		OandaAccountID: os.Getenv("OANDA_ACCOUNT_ID"),
		OandaEnv:       getEnvWithDefault("OANDA_ENV", "practice"),
		GrokAPIKey:     os.Getenv("GROK_API_KEY"),
		Symbol:         getEnvWithDefault("SYMBOL", "GBP_JPY"),
		CandleCount:    getEnvIntWithDefault("CANDLE_COUNT", 100),
		ORBTimeframe:   getEnvWithDefault("ORB_TIMEFRAME", "15m"),
		ORBMinutes:     getEnvIntWithDefault("ORB_MINUTES", 15),
		SwingWindow:    getEnvIntWithDefault("SWING_WINDOW", 3),
		ZoneLookback:   getEnvIntWithDefault("ZONE_LOOKBACK", 50),
		ModelName:      getEnvWithDefault("MODEL_NAME", "Grok-4"),
		PromptPath:     getEnvWithDefault("PROMPT_PATH", "prompt.json"),
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout: getEnvIntWithDefault("REQUEST_TIMEOUT", 30),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),
		Sessions:       DefaultSessions(),
		Timeframes:     DefaultTimeframes(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects inconsistent configuration at startup instead of
// letting a detector see a malformed parameter at runtime.
func (c *Config) Validate() error {
	if c.SwingWindow < 1 {
		return fmt.Errorf("swing window must be >= 1, got %d", c.SwingWindow)
	}
	if c.ZoneLookback < 1 {
		return fmt.Errorf("zone lookback must be >= 1, got %d", c.ZoneLookback)
	}
	if c.ORBMinutes < 1 {
		return fmt.Errorf("ORB minutes must be >= 1, got %d", c.ORBMinutes)
	}
	if c.CandleCount < 1 {
		return fmt.Errorf("candle count must be >= 1, got %d", c.CandleCount)
	}
	if len(c.Sessions) == 0 {
		return fmt.Errorf("session calendar is empty")
	}
	for _, s := range c.Sessions {
		if s.Name == "" {
			return fmt.Errorf("session with empty name in calendar")
		}
		if !validTimeOfDay(s.Start) || !validTimeOfDay(s.End) {
			return fmt.Errorf("session %q has an out-of-range time of day", s.Name)
		}
	}
	if len(c.Timeframes) == 0 {
		return fmt.Errorf("timeframe set is empty")
	}
	for _, tf := range c.Timeframes {
		if tf.Label == "" || tf.Granularity == "" {
			return fmt.Errorf("timeframe %q has no granularity code", tf.Label)
		}
	}
	return nil
}

func validTimeOfDay(t models.TimeOfDay) bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
