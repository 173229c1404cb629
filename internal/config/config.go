// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// DevJWTSecret is used when JWT_SECRET is unset. It is only fit for local use.
const DevJWTSecret = "lostfound-dev-secret"

type Config struct {
	ListenAddr   string
	StoreBackend string
	DBPath       string
	BoltPath     string
	ImagePath    string
	LogLevel     string
	LogFormat    string
	LogFile      string

	JWTSecret        string
	AutoVerifyDomain string

	UniversityAPIURL   string
	UniversityAPIToken string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	PublicURL    string
}

func Load() *Config {
	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		StoreBackend: getEnv("STORE_BACKEND", BackendSQLite),
		DBPath:       getEnv("DB_PATH", "/data/lostfound.db"),
		BoltPath:     getEnv("BOLT_PATH", "/data/lostfound.bolt"),
		ImagePath:    getEnv("IMAGE_PATH", "/data/images"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogFile:      getEnv("LOG_FILE", ""),

		JWTSecret:        getEnv("JWT_SECRET", DevJWTSecret),
		AutoVerifyDomain: getEnv("AUTO_VERIFY_DOMAIN", "university.test"),

		UniversityAPIURL:   getEnv("UNIVERSITY_API_URL", ""),
		UniversityAPIToken: getEnv("UNIVERSITY_API_TOKEN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "lost-and-found@university.test"),
		PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),
	}
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.SMTPHost != "" && c.MailFrom == "" {
		return errors.New("MAIL_FROM is required when SMTP_HOST is set")
	}
	return nil
}

// LoadDotEnv copies variables from the given files (".env" by default) into
// the environment. Variables that are already set win, and missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		_, err := os.Stat(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to stat env file: %w", err)
		}
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
