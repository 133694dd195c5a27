package config // package config loads application configuration from environment variables

import (
    "log"
    "strings"
    "time"
)

// Store backends selectable with STORE_BACKEND.
const (
    BackendMySQL  = "mysql"
    BackendMemory = "memory"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
    Env     string // application environment (e.g. "dev", "prod")
    Port    string // HTTP port to listen on
    Backend string // seat store backend: mysql or memory

    DBUser     string // database username
    DBPass     string // database password (optional)
    DBHost     string // database host address
    DBPort     string // database port number
    DBName     string // database name
    DBMaxConns int    // connection pool size
    DBMigrate  bool   // apply embedded migrations on start

    JWTSecret string // secret used to verify (and, in cmd/token, sign) JWTs

    SeatLockTTL     time.Duration // how long an acquired seat lock lasts
    SweepInterval   time.Duration // periodic expiry sweep; 0 keeps expiry purely lazy
    ShutdownTimeout time.Duration // grace period for in-flight requests

    RabbitMQURL     string // broker for seat activity; empty disables publishing
    ActivityLogPath string // file the activity consumer appends to

    RateLimit RateLimitConfig
    Cache     CacheConfig
    Redis     RedisConfig
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Database settings
// are only required for the mysql backend.
func Load() Config {
    cfg := Config{
        Env:             envStr("APP_ENV", "dev"),
        Port:            must("APP_PORT"),
        Backend:         strings.ToLower(envStr("STORE_BACKEND", BackendMySQL)),
        DBPass:          envStr("DB_PASS", ""),
        DBMaxConns:      envInt("DB_MAX_CONNS", 25),
        DBMigrate:       envBool("DB_MIGRATE", true),
        JWTSecret:       must("JWT_SECRET"),
        SeatLockTTL:     envDur("SEAT_LOCK_TTL", 2*time.Minute),
        SweepInterval:   envDur("SWEEP_INTERVAL", 0),
        ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 10*time.Second),
        RabbitMQURL:     envStr("RABBITMQ_URL", envStr("AMQP_URL", "")),
        ActivityLogPath: envStr("ACTIVITY_LOG_PATH", "logs/seat-activity.log"),
        RateLimit:       LoadRateLimitConfig(),
        Cache:           LoadCacheConfig(),
        Redis:           LoadRedisConfig(),
    }

    switch cfg.Backend {
    case BackendMySQL:
        cfg.DBUser = must("DB_USER")
        cfg.DBHost = must("DB_HOST")
        cfg.DBPort = envStr("DB_PORT", "3306")
        cfg.DBName = must("DB_NAME")
    case BackendMemory:
    default:
        log.Fatalf("invalid STORE_BACKEND %q (want %s or %s)", cfg.Backend, BackendMySQL, BackendMemory)
    }
    if cfg.SeatLockTTL <= 0 {
        log.Fatalf("SEAT_LOCK_TTL must be positive, got %s", cfg.SeatLockTTL)
    }
    return cfg
}
