package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Registry backends selectable with REGISTRY_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	ValidityWindow time.Duration
	Registry       RegistryConfig
	Oracle         OracleConfig
	Auth           AuthConfig
	Redis          RedisConfig
	Postgres       PostgresConfig
	SQLite         SQLiteConfig
	Kafka          KafkaConfig
}

// RegistryConfig selects the store and the verifier policies.
type RegistryConfig struct {
	Backend                string
	RequireIdentityBinding bool
	RequireMonotonic       bool
}

// OracleConfig configures the in-process oracle and the key the verifier trusts.
type OracleConfig struct {
	// SigningSeed is the hex Ed25519 seed. Empty disables the oracle endpoint
	// unless the environment is development.
	SigningSeed string
	// PublicKey is the hex oracle key the verifier trusts. Defaults to the
	// key derived from SigningSeed.
	PublicKey          string
	ChallengeSecret    string
	ChallengeVerifyURL string
}

// AuthConfig configures caller bearer tokens.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// RedisConfig configures the Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the database/sql pool.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SQLiteConfig struct {
	Path string
}

// KafkaConfig configures interaction record delivery. No brokers means
// records are kept in memory.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// DevelopmentJWTKey is used when JWT_SIGNING_KEY is unset.
const DevelopmentJWTKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr: getEnv("PROOFGATE_ADDR", ":8080"),
		Registry: RegistryConfig{
			Backend: strings.ToLower(getEnv("REGISTRY_BACKEND", BackendMemory)),
		},
		Oracle: OracleConfig{
			SigningSeed:        os.Getenv("ORACLE_SIGNING_SEED"),
			PublicKey:          os.Getenv("ORACLE_PUBLIC_KEY"),
			ChallengeSecret:    os.Getenv("CHALLENGE_SECRET"),
			ChallengeVerifyURL: os.Getenv("CHALLENGE_VERIFY_URL"),
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", DevelopmentJWTKey),
			JWTIssuer:     getEnv("JWT_ISSUER", "proofgate"),
			JWTAudience:   getEnv("JWT_AUDIENCE", "proofgate"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "proofgate.db"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("INTERACTION_TOPIC", "proofgate.interactions"),
		},
	}

	var err error
	if cfg.ValidityWindow, err = durationEnv("VALIDITY_WINDOW", 10*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.ValidityWindow < time.Millisecond {
		return Server{}, fmt.Errorf("VALIDITY_WINDOW must be at least 1ms, got %s", cfg.ValidityWindow)
	}
	if cfg.Registry.RequireIdentityBinding, err = boolEnv("REQUIRE_IDENTITY_BINDING", true); err != nil {
		return Server{}, err
	}
	if cfg.Registry.RequireMonotonic, err = boolEnv("REQUIRE_MONOTONIC", false); err != nil {
		return Server{}, err
	}

	switch cfg.Registry.Backend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if cfg.Redis.URL == "" {
			return Server{}, fmt.Errorf("REDIS_URL is required for the redis registry backend")
		}
	case BackendPostgres:
		if cfg.Postgres.URL == "" {
			return Server{}, fmt.Errorf("DATABASE_URL is required for the postgres registry backend")
		}
	default:
		return Server{}, fmt.Errorf("unknown REGISTRY_BACKEND %q", cfg.Registry.Backend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// durationEnv accepts Go durations ("90s") or bare milliseconds ("60000").
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
