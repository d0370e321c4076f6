package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI       string
	PostgresURI    string
	RedisURI       string
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: dashboard origins from ALLOWED_ORIGINS

	// Oracle (classifier + reply generator, chat-completions style API)
	OracleBaseURL    string
	OracleAPIKey     string
	OracleGuardModel string
	OracleChatModel  string
	OracleTimeout    time.Duration

	// Platform REST API (the chat platform the bot moderates)
	PlatformAPIURL   string
	PlatformBotToken string
	GatewayToken     string // shared secret for the inbound gateway feed
	BotUserID        string
	LogChannelID     string // empty disables the operator log channel

	// Moderation thresholds. Defaults match the behavior communities are
	// used to; none of the exact values are load-bearing.
	SpamWindow         time.Duration
	SpamThreshold      int
	StrikeWindow       time.Duration
	ExemptRoles        []string
	ClassifierFailMode string // "open" or "closed"
	LogDMFailures      bool

	// Chatbot history caps: keep the most recent HistoryKeep turns, send the
	// most recent HistorySend to the generator.
	HistoryKeep int
	HistorySend int
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	failMode := strings.ToLower(strings.TrimSpace(getEnv("CLASSIFIER_FAIL_MODE", "open")))
	if failMode != "closed" {
		failMode = "open"
	}

	return &Config{
		MongoURI:       getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/sentinel")),
		PostgresURI:    getEnv("POSTGRES_URI", "postgres://localhost:5432/sentinel?sslmode=disable"),
		RedisURI:       getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		AllowedOrigins: parseList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		OracleBaseURL:    getEnv("ORACLE_BASE_URL", "https://api.groq.com/openai/v1"),
		OracleAPIKey:     getEnv("ORACLE_API_KEY", ""),
		OracleGuardModel: getEnv("ORACLE_GUARD_MODEL", "meta-llama/Llama-Guard-4-12B"),
		OracleChatModel:  getEnv("ORACLE_CHAT_MODEL", "llama-3.3-70b-versatile"),
		OracleTimeout:    getSeconds("ORACLE_TIMEOUT_SECONDS", 15*time.Second),

		PlatformAPIURL:   getEnv("PLATFORM_API_URL", ""),
		PlatformBotToken: getEnv("PLATFORM_BOT_TOKEN", ""),
		GatewayToken:     getEnv("GATEWAY_TOKEN", ""),
		BotUserID:        getEnv("BOT_USER_ID", ""),
		LogChannelID:     getEnv("LOG_CHANNEL_ID", ""),

		SpamWindow:         getSeconds("SPAM_WINDOW_SECONDS", 5*time.Second),
		SpamThreshold:      getInt("SPAM_THRESHOLD", 3),
		StrikeWindow:       getDays("STRIKE_WINDOW_DAYS", 7),
		ExemptRoles:        parseList(getEnv("EXEMPT_ROLES", "")),
		ClassifierFailMode: failMode,
		LogDMFailures:      getBool("LOG_DM_FAILURES", false),

		HistoryKeep: getInt("CHAT_HISTORY_KEEP", 30),
		HistorySend: getInt("CHAT_HISTORY_SEND", 20),
	}
}

// Validate reports the first missing required setting. The process must not
// start without the oracle key and platform credentials.
func (c *Config) Validate() error {
	switch {
	case c.OracleAPIKey == "":
		return &MissingError{"ORACLE_API_KEY"}
	case c.PlatformAPIURL == "":
		return &MissingError{"PLATFORM_API_URL"}
	case c.PlatformBotToken == "":
		return &MissingError{"PLATFORM_BOT_TOKEN"}
	case c.GatewayToken == "":
		return &MissingError{"GATEWAY_TOKEN"}
	case c.BotUserID == "":
		return &MissingError{"BOT_USER_ID"}
	}
	if c.HistorySend > c.HistoryKeep {
		c.HistorySend = c.HistoryKeep
	}
	return nil
}

// MissingError is a fatal startup configuration error.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return "missing required environment variable: " + e.Key
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}

func getDays(key string, defaultDays int) time.Duration {
	return time.Duration(getInt(key, defaultDays)) * 24 * time.Hour
}
