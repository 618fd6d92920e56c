package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codewith-ram/task-manager/storage"
)

// SlotKind selects the backend holding the board.
type SlotKind string

const (
	SlotFile  SlotKind = "file"
	SlotRedis SlotKind = "redis"
	SlotTable SlotKind = "table"
)

// Config is the runtime configuration of the board service.
type Config struct {
	Debug bool

	Slot       SlotKind
	DataDir    string
	StorageKey string
	BoardName  string

	// Redis is nil when REDIS_CONNECTION_STRING is unset.
	Redis *redis.Options

	StorageConnectionString string
	BoardTable              string

	CacheTTL   time.Duration
	DeduperTTL time.Duration
	ListenAddr string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads and validates the configuration through lookup.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	cfg, err := Parse(lookup)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse reads the configuration through lookup without validating the slot
// requirements, so callers can apply overrides first.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := Config{
		Slot:       SlotFile,
		StorageKey: storage.DefaultKey,
		BoardName:  "board",
		DeduperTTL: 24 * time.Hour,
		ListenAddr: ":8080",
	}

	if v := get("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEBUG: %w", err)
		}
		cfg.Debug = dbg
	}

	if v := get("KANBAN_SLOT"); v != "" {
		switch SlotKind(strings.ToLower(v)) {
		case SlotFile, SlotRedis, SlotTable:
			cfg.Slot = SlotKind(strings.ToLower(v))
		default:
			return Config{}, fmt.Errorf("invalid KANBAN_SLOT %q: want file, redis or table", v)
		}
	}
	cfg.DataDir = get("KANBAN_DATA_DIR")
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if v := get("KANBAN_STORAGE_KEY"); v != "" {
		cfg.StorageKey = v
	}
	if v := get("BOARD_NAME"); v != "" {
		cfg.BoardName = v
	}

	if v := get("REDIS_CONNECTION_STRING"); v != "" {
		opts, err := ParseRedisOptions(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Redis = opts
		cfg.CacheTTL = 10 * time.Minute
	}
	cfg.StorageConnectionString = get("STORAGE_CONNECTION_STRING")
	cfg.BoardTable = get("BOARD_TABLE")

	var err error
	if cfg.CacheTTL, err = durationEnv(get, "CACHE_TTL", cfg.CacheTTL); err != nil {
		return Config{}, err
	}
	if cfg.DeduperTTL, err = durationEnv(get, "DEDUPER_TTL", cfg.DeduperTTL); err != nil {
		return Config{}, err
	}

	if v := get("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := lookup("FUNCTIONS_CUSTOMHANDLER_PORT"); ok && v != "" {
		cfg.ListenAddr = ":" + v
	}

	return cfg, nil
}

// Validate checks that the selected slot has what it needs.
func (c Config) Validate() error {
	switch c.Slot {
	case SlotFile:
		if c.DataDir == "" {
			return fmt.Errorf("missing data dir for file slot")
		}
	case SlotRedis:
		if c.Redis == nil {
			return fmt.Errorf("missing redis config for redis slot")
		}
	case SlotTable:
		if c.StorageConnectionString == "" || c.BoardTable == "" {
			return fmt.Errorf("missing storage config for table slot")
		}
	default:
		return fmt.Errorf("unknown slot %q", c.Slot)
	}
	return nil
}

// DefaultDataDir is the per-user directory the file slot writes to.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "kanban")
	}
	return ".kanban"
}

// ParseRedisOptions accepts either a redis:// URL or the
// "host:port,password=...,ssl=true" form used by hosted Redis.
func ParseRedisOptions(conn string) (*redis.Options, error) {
	if opts, err := redis.ParseURL(conn); err == nil {
		return opts, nil
	}
	parts := strings.Split(conn, ",")
	addr := strings.TrimSpace(parts[0])
	if addr == "" || strings.Contains(addr, "=") {
		return nil, fmt.Errorf("invalid REDIS_CONNECTION_STRING")
	}
	opts := &redis.Options{Addr: addr}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(kv[0])) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.EqualFold(strings.TrimSpace(kv[1]), "true") {
				opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
			}
		}
	}
	return opts, nil
}

func durationEnv(get func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := get(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
