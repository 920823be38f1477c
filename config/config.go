package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string
	// SMTP relay
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string // Header/envelope sender, defaults to the SMTP login
	RelayTimeout  time.Duration
	// Site owner
	OwnerEmail       string
	OwnerName        string
	OwnerRole        string
	OwnerGitHubURL   string
	OwnerLinkedInURL string
	ContactFromName  string
	TimeZone         string
	// Redis (optional rate limit store)
	RedisURL      string
	RedisPassword string
	// Rate limiting
	RateLimitAPIMax        int
	RateLimitAPIWindow     time.Duration
	RateLimitContactMax    int
	RateLimitContactWindow time.Duration
	CORSAllowedOrigins     []string
	SwaggerEnabled         bool
	// Request body cap for the contact routes
	ContactMaxBodyBytes int64
}

func LoadConfig() (*Config, error) {
	// .env is optional; production reads the real environment
	_ = godotenv.Load()

	ginMode := getEnv("GIN_MODE", "debug")
	smtpUser := getEnv("SMTP_USERNAME", getEnv("EMAIL_USER", ""))

	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		GinMode:  ginMode,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  smtpUser,
		SMTPPassword:  getEnv("SMTP_PASSWORD", getEnv("EMAIL_PASS", "")),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", smtpUser),
		RelayTimeout:  getEnvSeconds("RELAY_TIMEOUT_SECONDS", 15),
		// Owner / page configuration
		OwnerEmail:       getEnv("OWNER_EMAIL", "owner@example.com"),
		OwnerName:        getEnv("OWNER_NAME", "Alex Rivera"),
		OwnerRole:        getEnv("OWNER_ROLE", "Full-Stack Developer"),
		OwnerGitHubURL:   getEnv("OWNER_GITHUB_URL", "https://github.com"),
		OwnerLinkedInURL: getEnv("OWNER_LINKEDIN_URL", "https://linkedin.com"),
		ContactFromName:  getEnv("CONTACT_FROM_NAME", "Portfolio Contact"),
		TimeZone:         getEnv("TIMEZONE", "America/Bogota"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitAPIMax:        getEnvInt("RATE_LIMIT_API_MAX", 100),
		RateLimitAPIWindow:     getEnvMinutes("RATE_LIMIT_API_WINDOW_MINUTES", 15),
		RateLimitContactMax:    getEnvInt("RATE_LIMIT_CONTACT_MAX", 5),
		RateLimitContactWindow: getEnvMinutes("RATE_LIMIT_CONTACT_WINDOW_MINUTES", 60),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS"),
		SwaggerEnabled:         getEnvBool("SWAGGER_ENABLED", ginMode != "release"),
		ContactMaxBodyBytes:    int64(getEnvInt("CONTACT_MAX_BODY_KB", 100)) * 1024,
	}

	if cfg.SMTPUsername == "" || cfg.SMTPPassword == "" {
		log.Println("WARNING: SMTP credentials are missing. Contact form emails will fail.")
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Location returns the configured time zone, or the server's local zone when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvMinutes(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Minute
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}
