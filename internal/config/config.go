package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string
	// TokenHash is a bcrypt hash of the bearer token required on /reports.
	// Empty disables the check.
	TokenHash string
	// RateLimit is the number of report requests allowed per client per minute.
	RateLimit int
	// TrustedProxies lists proxy IPs or CIDRs whose forwarding headers
	// identify the client. Empty keys clients on their peer address.
	TrustedProxies []string
}

// Load reads an optional .env file from the working directory, then the
// environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("load .env", "error", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Port:      getEnv("REPORTS_PORT", "8095"),
		DBPath:    getEnv("REPORTS_DB_PATH", "mirror.db"),
		LogLevel:  getEnv("REPORTS_LOG_LEVEL", "info"),
		LogFormat: getEnv("REPORTS_LOG_FORMAT", "text"),
		TokenHash: os.Getenv("REPORTS_TOKEN_HASH"),
		RateLimit: getEnvInt("REPORTS_RATE_LIMIT", 60),

		TrustedProxies: getEnvList("REPORTS_TRUSTED_PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer setting, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return n
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
