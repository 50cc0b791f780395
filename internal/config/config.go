package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the authorization service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Policy   PolicyConfig
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

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	RefreshPerMinute      int
	RefreshBurst          int
}

// PolicyConfig tunes the evaluator and the snapshot caches.
type PolicyConfig struct {
	UrgentPriority     string
	IdentityTTLSeconds int
	TeamCacheSize      int
	TeamCacheTTLSecs   int
	LoadTimeoutSecs    int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "crm-authz"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
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
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			RefreshPerMinute:      getEnvAsInt("AUTH_REFRESH_PER_MINUTE", 6),
			RefreshBurst:          getEnvAsInt("AUTH_REFRESH_BURST", 3),
		},
		Policy: PolicyConfig{
			UrgentPriority:     getEnv("POLICY_URGENT_PRIORITY", "alias"),
			IdentityTTLSeconds: getEnvAsInt("POLICY_IDENTITY_TTL_SECONDS", 300),
			TeamCacheSize:      getEnvAsInt("POLICY_TEAM_CACHE_SIZE", 256),
			TeamCacheTTLSecs:   getEnvAsInt("POLICY_TEAM_CACHE_TTL_SECONDS", 60),
			LoadTimeoutSecs:    getEnvAsInt("POLICY_DIRECTORY_LOAD_TIMEOUT_SECONDS", 5),
		},
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

// IdentityTTL returns how long an identity snapshot may be served from cache.
func (p PolicyConfig) IdentityTTL() time.Duration {
	if p.IdentityTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(p.IdentityTTLSeconds) * time.Second
}

// TeamCacheTTL returns how long a team index may be served from cache.
func (p PolicyConfig) TeamCacheTTL() time.Duration {
	if p.TeamCacheTTLSecs <= 0 {
		return 0
	}
	return time.Duration(p.TeamCacheTTLSecs) * time.Second
}

// LoadTimeout bounds one shared directory read; zero leaves the resolver default.
func (p PolicyConfig) LoadTimeout() time.Duration {
	if p.LoadTimeoutSecs <= 0 {
		return 0
	}
	return time.Duration(p.LoadTimeoutSecs) * time.Second
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
