package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	DatabaseDSN string
	JWTSecret   string
	JWTExpire   time.Duration
	BcryptCost  int
	CORSOrigins []string
	SwaggerHost string
	ResetDB     bool

	// Seed-only settings.
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:   getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/inkwell?charset=utf8mb4&parseTime=True&loc=Local"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpire:     getEnvDuration("JWT_EXPIRE", 30*24*time.Hour),
		BcryptCost:    getEnvInt("BCRYPT_COST", 10),
		CORSOrigins:   getEnvList("CORS_ORIGINS", []string{"*"}),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
		ResetDB:       getEnvBool("RESET_DB", false),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvDuration accepts Go durations ("15m", "12h") and whole days ("30d").
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return def
	}
	if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
		return parsed
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
