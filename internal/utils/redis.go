package utils

import (
	"property-api/internal/config"
	"property-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis: client for addr; nil when addr is empty
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// OpenRedisFromConfig: nil unless REDIS_ENABLED=true.
// Constraint: a negative REDIS_DB falls back to 0.
func OpenRedisFromConfig(cfg config.Config) *redis.Client {
	if !cfg.RedisEnabled {
		return nil
	}
	db := cfg.RedisDB
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", cfg.RedisAddr(), "db", db)
	return OpenRedis(cfg.RedisAddr(), cfg.RedisPass, db)
}
