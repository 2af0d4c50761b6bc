// Package config loads engine and runtime settings from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hailam/venomchess/internal/engine"
	"github.com/hailam/venomchess/internal/eval"
	"github.com/hailam/venomchess/internal/obslog"
	"github.com/hailam/venomchess/internal/storage"
	"github.com/hailam/venomchess/internal/zobrist"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VENOM_"

type Config struct {
	Search SearchConfig `yaml:"search"`
	Table  TableConfig  `yaml:"table"`
	Hash   HashConfig   `yaml:"hash"`
	Clock  ClockConfig  `yaml:"clock"`
	Log    LogConfig    `yaml:"log"`
	Stats  StatsConfig  `yaml:"stats"`
}

// SearchConfig controls the search. A move_time overrides the clock, and
// the clock overrides the fixed depth.
type SearchConfig struct {
	Depth           int           `yaml:"depth"`
	MaxDepth        int           `yaml:"max_depth"`
	MoveTime        time.Duration `yaml:"move_time"`
	TimeFraction    int           `yaml:"time_fraction"`
	MinMoveTime     time.Duration `yaml:"min_move_time"`
	Quiescence      bool          `yaml:"quiescence"`
	QuiescenceDepth int           `yaml:"quiescence_depth"`
	Threads         int           `yaml:"threads"`
	Seed            int64         `yaml:"seed"` // 0 picks a time based seed
}

type TableConfig struct {
	Capacity   int  `yaml:"capacity"` // entries, 0 disables the table
	Persistent bool `yaml:"persistent"`
}

type HashConfig struct {
	Seed uint64 `yaml:"seed"`
}

type ClockConfig struct {
	Initial time.Duration `yaml:"initial"` // 0 plays untimed
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type StatsConfig struct {
	Backend  string        `yaml:"backend"`
	Path     string        `yaml:"path"` // badger directory, empty for the data dir
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns a configuration that plays at depth 4 without a clock.
func Default() *Config {
	opts := engine.DefaultOptions()
	return &Config{
		Search: SearchConfig{
			Depth:           opts.Depth,
			MaxDepth:        opts.MaxDepth,
			TimeFraction:    opts.TimeFraction,
			MinMoveTime:     opts.MinMoveTime,
			Quiescence:      opts.Quiescence,
			QuiescenceDepth: opts.QuiescenceDepth,
			Threads:         opts.Threads,
			Seed:            opts.Seed,
		},
		Table: TableConfig{
			Capacity: opts.TableCapacity,
		},
		Hash: HashConfig{Seed: zobrist.DefaultSeed},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Stats: StatsConfig{
			Backend: storage.BackendNone,
			TTL:     24 * time.Hour,
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	get := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(EnvPrefix + key))
		return v, v != ""
	}
	setInt := func(key string, dst *int) {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := get(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	setInt("SEARCH_DEPTH", &c.Search.Depth)
	setInt("SEARCH_MAX_DEPTH", &c.Search.MaxDepth)
	setDuration("SEARCH_MOVE_TIME", &c.Search.MoveTime)
	setInt("SEARCH_TIME_FRACTION", &c.Search.TimeFraction)
	setBool("SEARCH_QUIESCENCE", &c.Search.Quiescence)
	setInt("SEARCH_QUIESCENCE_DEPTH", &c.Search.QuiescenceDepth)
	setInt("SEARCH_THREADS", &c.Search.Threads)
	if v, ok := get("SEARCH_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSEARCH_SEED: %w", EnvPrefix, err))
		} else {
			c.Search.Seed = n
		}
	}
	setInt("TABLE_CAPACITY", &c.Table.Capacity)
	setBool("TABLE_PERSISTENT", &c.Table.Persistent)
	if v, ok := get("HASH_SEED"); ok {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sHASH_SEED: %w", EnvPrefix, err))
		} else {
			c.Hash.Seed = n
		}
	}
	setDuration("CLOCK_INITIAL", &c.Clock.Initial)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)
	setString("LOG_FILE", &c.Log.File)
	setString("STATS_BACKEND", &c.Stats.Backend)
	setString("STATS_PATH", &c.Stats.Path)
	setString("REDIS_URL", &c.Stats.RedisURL)
	setDuration("STATS_TTL", &c.Stats.TTL)

	return errors.Join(errs...)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	s := c.Search
	if s.Depth < 1 || s.Depth > eval.MaxPly/2 {
		errs = append(errs, fmt.Errorf("search.depth %d out of range [1, %d]", s.Depth, eval.MaxPly/2))
	}
	if s.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("search.max_depth must be positive, got %d", s.MaxDepth))
	}
	if s.MoveTime < 0 || s.MinMoveTime < 0 || c.Clock.Initial < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	if s.TimeFraction < 1 {
		errs = append(errs, fmt.Errorf("search.time_fraction must be at least 1, got %d", s.TimeFraction))
	}
	if s.QuiescenceDepth < 0 {
		errs = append(errs, fmt.Errorf("search.quiescence_depth must not be negative, got %d", s.QuiescenceDepth))
	}
	if s.MaxDepth+s.QuiescenceDepth >= eval.MaxPly {
		errs = append(errs, fmt.Errorf("search.max_depth + search.quiescence_depth must be below %d, got %d",
			eval.MaxPly, s.MaxDepth+s.QuiescenceDepth))
	}
	if s.Threads < 1 {
		errs = append(errs, fmt.Errorf("search.threads must be at least 1, got %d", s.Threads))
	}
	if c.Table.Capacity < 0 {
		errs = append(errs, fmt.Errorf("table.capacity must not be negative, got %d", c.Table.Capacity))
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json", "legacy":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	switch c.Stats.Backend {
	case storage.BackendNone, storage.BackendBadger:
	case storage.BackendRedis:
		if strings.TrimSpace(c.Stats.RedisURL) == "" {
			errs = append(errs, errors.New("stats.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown stats.backend %q", c.Stats.Backend))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EngineOptions converts the search and table settings.
func (c *Config) EngineOptions() engine.Options {
	seed := c.Search.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return engine.Options{
		Depth:           c.Search.Depth,
		MaxDepth:        c.Search.MaxDepth,
		MoveTime:        c.Search.MoveTime,
		TimeFraction:    c.Search.TimeFraction,
		MinMoveTime:     c.Search.MinMoveTime,
		Quiescence:      c.Search.Quiescence,
		QuiescenceDepth: c.Search.QuiescenceDepth,
		TableCapacity:   c.Table.Capacity,
		PersistentTable: c.Table.Persistent,
		Threads:         c.Search.Threads,
		Seed:            seed,
	}
}

// LogOptions converts the log settings.
func (c *Config) LogOptions() obslog.Options {
	return obslog.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}
}

// StorageOptions converts the stats settings.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:  c.Stats.Backend,
		Path:     c.Stats.Path,
		RedisURL: c.Stats.RedisURL,
		TTL:      c.Stats.TTL,
	}
}
