package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	GigaChat  GigaChatConfig
	Workspace WorkspaceConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string // json or console
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int
	AllowedOrigins string
}

type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	MigrateOnStart bool
}

// DSN returns the keyword/value connection string understood by pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// DefaultJWTSecret signs tokens when JWT_SECRET_KEY is unset. Development only.
const DefaultJWTSecret = "change-me-in-production-please"

type JWTConfig struct {
	SecretKey  string
	Issuer     string
	Audience   string
	Expiration time.Duration
}

func (c JWTConfig) IsDefaultSecret() bool {
	return c.SecretKey == DefaultJWTSecret
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	BaseURL            string
	OAuthURL           string
	InsecureSkipVerify bool
}

// Enabled reports whether an API key was configured.
func (c GigaChatConfig) Enabled() bool {
	return c.APIKey != ""
}

type WorkspaceConfig struct {
	// StrictHeader rejects an X-Workspace-Id the caller is not a member of
	// instead of falling back to the personal workspace.
	StrictHeader bool
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work for Docker/K8s
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout:   time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 60)) * time.Second,
			BodyLimit:      getEnvInt("SERVER_BODY_LIMIT_MB", 15) * 1024 * 1024,
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "expense_tracker"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       int32(getEnvInt("DB_MAX_CONNS", 10)),
			MigrateOnStart: getEnvBool("DB_MIGRATE_ON_START", true),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
			Issuer:     getEnv("JWT_ISSUER", "expense-tracker"),
			Audience:   getEnv("JWT_AUDIENCE", "expense-tracker-web"),
			Expiration: time.Duration(getEnvInt("JWT_EXPIRATION_MINUTES", 120)) * time.Minute,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			BaseURL:            getEnv("GIGACHAT_BASE_URL", "https://gigachat.devices.sberbank.ru/api/v1"),
			OAuthURL:           getEnv("GIGACHAT_OAUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
			InsecureSkipVerify: getEnvBool("GIGACHAT_INSECURE_SKIP_VERIFY", false),
		},
		Workspace: WorkspaceConfig{
			StrictHeader: getEnvBool("WORKSPACE_STRICT_HEADER", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want %s or %s)", c.Database.Driver, DriverPostgres, DriverMemory)
	}
	if len(c.JWT.SecretKey) < 16 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 16 bytes")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}
