package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hailam/venomchess/internal/storage"
	"github.com/hailam/venomchess/internal/zobrist"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venom.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Hash.Seed != zobrist.DefaultSeed {
		t.Errorf("hash seed = %x", cfg.Hash.Seed)
	}
	if cfg.Table.Persistent {
		t.Error("table should be per-move by default")
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
search:
  depth: 6
  move_time: 250ms
  quiescence: false
  threads: 4
table:
  capacity: 4096
  persistent: true
clock:
  initial: 5m
log:
  level: debug
  format: json
stats:
  backend: badger
  path: /tmp/venom-stats
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Search.Depth != 6 || cfg.Search.MoveTime != 250*time.Millisecond || cfg.Search.Quiescence {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Search.TimeFraction != Default().Search.TimeFraction {
		t.Error("unset fields should keep their defaults")
	}
	if cfg.Table.Capacity != 4096 || !cfg.Table.Persistent {
		t.Errorf("table = %+v", cfg.Table)
	}
	if cfg.Clock.Initial != 5*time.Minute {
		t.Errorf("clock = %v", cfg.Clock.Initial)
	}

	opts := cfg.EngineOptions()
	if opts.Threads != 4 || opts.TableCapacity != 4096 || !opts.PersistentTable || opts.Quiescence {
		t.Errorf("engine options = %+v", opts)
	}
	if so := cfg.StorageOptions(); so.Backend != storage.BackendBadger || so.Path != "/tmp/venom-stats" {
		t.Errorf("storage options = %+v", so)
	}
	if lo := cfg.LogOptions(); lo.Level != "debug" || lo.Format != "json" {
		t.Errorf("log options = %+v", lo)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "search:\n  depth: 3\n")
	t.Setenv("VENOM_SEARCH_DEPTH", "5")
	t.Setenv("VENOM_TABLE_PERSISTENT", "true")
	t.Setenv("VENOM_HASH_SEED", "0x1234")
	t.Setenv("VENOM_STATS_BACKEND", "redis")
	t.Setenv("VENOM_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Depth != 5 {
		t.Errorf("depth = %d, want the env value 5", cfg.Search.Depth)
	}
	if !cfg.Table.Persistent || cfg.Hash.Seed != 0x1234 {
		t.Errorf("table = %+v, hash = %+v", cfg.Table, cfg.Hash)
	}
	if cfg.Stats.Backend != storage.BackendRedis || cfg.Stats.RedisURL == "" {
		t.Errorf("stats = %+v", cfg.Stats)
	}
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("VENOM_SEARCH_THREADS", "many")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "VENOM_SEARCH_THREADS") {
		t.Errorf("Load error = %v, want a VENOM_SEARCH_THREADS error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero depth", func(c *Config) { c.Search.Depth = 0 }},
		{"huge depth", func(c *Config) { c.Search.Depth = 500 }},
		{"no threads", func(c *Config) { c.Search.Threads = 0 }},
		{"negative capacity", func(c *Config) { c.Table.Capacity = -1 }},
		{"negative move time", func(c *Config) { c.Search.MoveTime = -time.Second }},
		{"zero time fraction", func(c *Config) { c.Search.TimeFraction = 0 }},
		{"unknown backend", func(c *Config) { c.Stats.Backend = "postgres" }},
		{"redis without url", func(c *Config) { c.Stats.Backend = storage.BackendRedis }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative quiescence depth", func(c *Config) { c.Search.QuiescenceDepth = -1 }},
		{"huge quiescence depth", func(c *Config) { c.Search.QuiescenceDepth = 200 }},
		{"plies beyond mate range", func(c *Config) {
			c.Search.MaxDepth = 100
			c.Search.QuiescenceDepth = 28
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load succeeded on a missing file")
	}
}

func TestSeedZeroIsTimeBased(t *testing.T) {
	cfg := Default()
	cfg.Search.Seed = 0
	if cfg.EngineOptions().Seed == 0 {
		t.Error("seed 0 was passed through")
	}
}
