package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AdrienGannerie/gridboard/pkg/errors"
	"github.com/AdrienGannerie/gridboard/pkg/grid"
	"github.com/AdrienGannerie/gridboard/pkg/store"
)

// Config is the gridboard.toml file format. Zero values fall back to
// defaults, so a minimal file only needs to name a store.
type Config struct {
	Dashboard       string      `toml:"dashboard"`
	SlotCount       int         `toml:"slot_count"`
	ShrinkToPlace   bool        `toml:"shrink_to_place"`
	SlideToTop      bool        `toml:"slide_to_top"`
	RemoveEmptyRows bool        `toml:"remove_empty_rows"`
	Store           StoreConfig `toml:"store"`
	Serve           ServeConfig `toml:"serve"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Kind is one of "memory", "file", "redis", "mongo". Defaults to "file".
	Kind string `toml:"kind"`
	// Path is the base directory for the file backend. Empty means the
	// default config directory.
	Path  string      `toml:"path"`
	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file is given.
func defaultConfig() Config {
	return Config{
		Dashboard:       "home",
		SlotCount:       8,
		ShrinkToPlace:   true,
		RemoveEmptyRows: true,
		Store:           StoreConfig{Kind: "file"},
		Serve:           ServeConfig{Addr: ":8273"},
	}
}

// loadConfig reads the TOML file at path, or falls back to
// ~/.config/gridboard/gridboard.toml, or to defaults when neither exists.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", "gridboard", "gridboard.toml")
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SlotCount <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "slot_count must be positive, got %d", c.SlotCount)
	}
	if err := errors.ValidateDashboardName(c.Dashboard); err != nil {
		return err
	}
	switch c.Store.Kind {
	case "", "memory", "file":
	case "redis":
		if c.Store.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis.addr is required for the redis backend")
		}
	case "mongo":
		if c.Store.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store kind %q", c.Store.Kind)
	}
	return nil
}

// gridOptions translates the config into engine options.
func (c Config) gridOptions() grid.Options {
	return grid.Options{
		SlotCount:       c.SlotCount,
		ShrinkToPlace:   c.ShrinkToPlace,
		SlideToTop:      c.SlideToTop,
		RemoveEmptyRows: c.RemoveEmptyRows,
	}
}

// openStore builds the configured store. The returned cleanup closes any
// client the store was built on and is always safe to call.
func (c Config) openStore(ctx *commandContext) (grid.Store, func(), error) {
	noop := func() {}
	switch c.Store.Kind {
	case "memory":
		return store.NewMemory(), noop, nil
	case "", "file":
		st, err := store.NewFile(c.Store.Path, c.Dashboard)
		if err != nil {
			return nil, noop, err
		}
		return st, noop, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
		})
		cleanup := func() {
			if err := client.Close(); err != nil {
				ctx.logger.Warn("closing redis client", "err", err)
			}
		}
		return store.NewRedis(client, c.Dashboard), cleanup, nil
	case "mongo":
		client, err := mongo.Connect(ctx.ctx, options.Client().ApplyURI(c.Store.Mongo.URI))
		if err != nil {
			return nil, noop, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
		}
		cleanup := func() {
			if err := client.Disconnect(ctx.ctx); err != nil {
				ctx.logger.Warn("disconnecting mongo client", "err", err)
			}
		}
		db := c.Store.Mongo.Database
		if db == "" {
			db = "gridboard"
		}
		coll := c.Store.Mongo.Collection
		if coll == "" {
			coll = "layouts"
		}
		st := store.NewMongo(client.Database(db).Collection(coll), c.Dashboard)
		if err := st.EnsureIndexes(ctx.ctx); err != nil {
			cleanup()
			return nil, noop, err
		}
		return st, cleanup, nil
	default:
		return nil, noop, errors.New(errors.ErrCodeInvalidConfig, "unknown store kind %q", c.Store.Kind)
	}
}
