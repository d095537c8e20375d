package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	ServerPort     int
	AllowedOrigins []string

	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseURL    string

	SecretKey      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration
	BcryptCost     int

	LogLevel string
	AppEnv   string
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// fileConfig mirrors the optional YAML file named by CONFIG_FILE.
type fileConfig struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Auth struct {
		SecretKey                string `yaml:"secret_key"`
		JWTAlgorithm             string `yaml:"jwt_algorithm"`
		AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
		BcryptCost               int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Defaults.
const (
	defaultPort           = 8080
	defaultDriver         = "sqlite"
	defaultSQLitePath     = "./todo.db"
	defaultAlgorithm      = "HS256"
	defaultTokenTTLMinute = 30
)

var ErrMissingSecret = errors.New("SECRET_KEY environment variable not set")

// Load loads configuration from a .env file (if present), an optional YAML file
// named by CONFIG_FILE and environment variables, in increasing precedence.
func Load() (*Config, error) {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	var fc fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	return build(fc)
}

func build(fc fileConfig) (*Config, error) {
	port, err := getEnvInt("PORT", orInt(fc.Server.Port, defaultPort))
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", orInt(fc.Auth.AccessTokenExpireMinutes, defaultTokenTTLMinute))
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", ttlMinutes)
	}
	cost, err := getEnvInt("BCRYPT_COST", orInt(fc.Auth.BcryptCost, bcrypt.DefaultCost))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:     port,
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", strings.Join(fc.Server.AllowedOrigins, ","))),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", orString(fc.Database.Driver, defaultDriver))),
		DatabaseURL:    getEnv("DATABASE_URL", fc.Database.URL),
		SecretKey:      getEnv("SECRET_KEY", fc.Auth.SecretKey),
		JWTAlgorithm:   strings.ToUpper(getEnv("JWT_ALGORITHM", orString(fc.Auth.JWTAlgorithm, defaultAlgorithm))),
		AccessTokenTTL: time.Duration(ttlMinutes) * time.Minute,
		BcryptCost:     cost,
		LogLevel:       getEnv("LOG_LEVEL", orString(fc.Log.Level, "info")),
		AppEnv:         getEnv("APP_ENV", "development"),
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}

	switch cfg.DatabaseDriver {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = defaultSQLitePath
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			dsn, err := postgresDSNFromEnv()
			if err != nil {
				return nil, err
			}
			cfg.DatabaseURL = dsn
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// postgresDSNFromEnv assembles a connection URL from the POSTGRES_* components.
func postgresDSNFromEnv() (string, error) {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	name := getEnv("POSTGRES_DB", "todo_db")
	if user == "" || password == "" || host == "" || port == "" {
		return "", errors.New("one or more database environment variables are not set")
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + getEnv("POSTGRES_SSLMODE", "disable"),
	}
	return u.String(), nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orString(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
