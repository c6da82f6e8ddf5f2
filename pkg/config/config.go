package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every process-level setting. It is built once in main
// and passed to constructors; nothing reads the environment after Load.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3000"),

		DBHost:     getEnv("DB_HOST", "postgres"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "program"),
		DBPassword: getEnv("DB_PASSWORD", "test"),
		DBName:     getEnv("DB_NAME", "bookclub"),

		AccessTokenSecret:  getEnv("ACCESS_TOKEN_SECRET", "dev-access-secret"),
		RefreshTokenSecret: getEnv("REFRESH_TOKEN_SECRET", "dev-refresh-secret"),
		AccessTokenTTL:     getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		SMTPHost: getEnv("MAIL_HOST", "smtp.gmail.com"),
		SMTPPort: getInt("MAIL_PORT", 465),
		SMTPUser: getEnv("MAIL_USER", ""),
		SMTPPass: getEnv("MAIL_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", "Book Club <no-reply@bookclub.local>"),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
