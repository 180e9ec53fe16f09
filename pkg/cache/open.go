package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend         string // file (default), redis, mongo or none
	Dir             string // file: cache directory, DefaultDir when empty
	RedisURL        string // redis: redis://host:port/db
	RedisPrefix     string // redis: key prefix, "slipmap:" when empty
	MongoURI        string // mongo: connection string
	MongoDatabase   string
	MongoCollection string
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileCache(cfg.Dir)
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis cache requires a url")
		}
		prefix := cfg.RedisPrefix
		if prefix == "" {
			prefix = "slipmap:"
		}
		return NewRedisCache(ctx, cfg.RedisURL, prefix)
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache requires a uri")
		}
		return NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, redis, mongo or none)", cfg.Backend)
}
