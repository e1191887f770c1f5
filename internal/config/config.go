package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// HTTPConfig holds the CORS policy.
type HTTPConfig struct {
	AllowOrigins     string
	AllowCredentials bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters. The secrets themselves are
// resolved separately by LoadSecrets.
type AuthConfig struct {
	SigningKeyFile      string
	LocalSalt           string
	PepperHex           string
	Argon2Passes        int
	Argon2Lanes         int
	Argon2MemoryKiB     int
	CookieName          string
	CookieSecure        bool
	UserCacheTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "user-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8181"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			AllowOrigins:     getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("DATABASE_URL"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SigningKeyFile:      getEnv("AUTH_SIGNING_KEY_FILE", "secret.key"),
			LocalSalt:           os.Getenv("LOCAL_SALT"),
			PepperHex:           os.Getenv("PASSWORD_PEPPER"),
			Argon2Passes:        getEnvAsInt("AUTH_ARGON2_PASSES", 3),
			Argon2Lanes:         getEnvAsInt("AUTH_ARGON2_LANES", 1),
			Argon2MemoryKiB:     getEnvAsInt("AUTH_ARGON2_MEMORY_KIB", 4096),
			CookieName:          getEnv("AUTH_COOKIE_NAME", "jwt"),
			CookieSecure:        getEnvAsBool("AUTH_COOKIE_SECURE", false),
			UserCacheTTLSeconds: getEnvAsInt("USER_CACHE_TTL_SECONDS", 300),
		},
	}

	if cfg.Postgres.DSN == "" {
		cfg.Postgres.DSN = os.Getenv("POSTGRES_DSN")
	}

	if err := cfg.HTTP.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// UserCacheTTL returns how long public user views stay cached.
func (a AuthConfig) UserCacheTTL() time.Duration {
	if a.UserCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.UserCacheTTLSeconds) * time.Second
}

// AllowOriginList splits the comma separated origin list.
func (h HTTPConfig) AllowOriginList() []string {
	var origins []string
	for _, o := range strings.Split(h.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate rejects origin lists the CORS middleware cannot honor.
func (h HTTPConfig) Validate() error {
	origins := h.AllowOriginList()
	if len(origins) == 0 {
		return errors.New("CORS_ALLOW_ORIGINS must list at least one origin")
	}
	if h.AllowCredentials && slices.Contains(origins, "*") {
		return errors.New("CORS_ALLOW_ORIGINS cannot be * when CORS_ALLOW_CREDENTIALS is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
