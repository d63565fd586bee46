// Package config assembles the per-package configurations from the
// environment. An optional .env file is loaded first; variables already set
// in the process environment win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/studyhall/internal/llm"
	"github.com/abhisek/studyhall/internal/lock"
	"github.com/abhisek/studyhall/internal/progression"
	"github.com/abhisek/studyhall/internal/review"
	"github.com/abhisek/studyhall/internal/store"
)

// Lock backends.
const (
	LockLocal = "local"
	LockRedis = "redis"
)

type Config struct {
	Store       StoreConfig
	Progression progression.Config
	Review      review.Config
	Lock        LockConfig
	LLM         llm.Config
	Server      ServerConfig

	// LogMode is "dev" or "prod".
	LogMode string

	// User is the learner id used by the CLI when --user is not given.
	User string
}

type StoreConfig struct {
	Driver string
	// DSN is empty for the default SQLite file.
	DSN string
}

type LockConfig struct {
	Backend string
	Redis   lock.RedisConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	// CatalogRefresh is how often the badge catalog snapshot is reloaded.
	// Zero disables the refresh job.
	CatalogRefresh time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Store:       StoreConfig{Driver: store.DriverSQLite},
		Progression: progression.DefaultConfig(),
		Review:      review.DefaultConfig(),
		Lock: LockConfig{
			Backend: LockLocal,
			Redis:   lock.RedisConfig{Addr: "localhost:6379", TTL: 10 * time.Second},
		},
		LLM: llm.DefaultConfig(),
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			CatalogRefresh: 5 * time.Minute,
		},
		LogMode: "dev",
		User:    "default",
	}
}

// Load reads envFile (when non-empty; a missing file is an error) or a
// .env in the working directory (when present), then builds the
// configuration from STUDYHALL_* variables.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment. Every
// malformed value is reported in the returned error.
func FromEnv() (Config, error) {
	cfg := Default()
	var p parser

	cfg.Store.Driver = p.str("STUDYHALL_DB_DRIVER", cfg.Store.Driver)
	cfg.Store.DSN = p.str("STUDYHALL_DB", cfg.Store.DSN)
	if d := cfg.Store.Driver; d != store.DriverSQLite && d != store.DriverPostgres {
		p.fail("STUDYHALL_DB_DRIVER", fmt.Errorf("unknown driver %q", d))
	}
	if cfg.Store.Driver == store.DriverPostgres && cfg.Store.DSN == "" {
		p.fail("STUDYHALL_DB", errors.New("a DSN is required for postgres"))
	}

	if tz := p.str("STUDYHALL_TZ", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			p.fail("STUDYHALL_TZ", err)
		} else {
			cfg.Progression.Location = loc
		}
	}
	cfg.Review.Location = cfg.Progression.Location
	cfg.Progression.MaxCascadeDepth = p.int("STUDYHALL_MAX_CASCADE_DEPTH", cfg.Progression.MaxCascadeDepth)
	cfg.Progression.StreakBonusPerDay = p.int("STUDYHALL_STREAK_BONUS_PER_DAY", cfg.Progression.StreakBonusPerDay)
	cfg.Progression.AllowNegative = p.bool("STUDYHALL_ALLOW_NEGATIVE_XP", cfg.Progression.AllowNegative)

	cfg.Review.XPCorrect = p.int("STUDYHALL_XP_CORRECT", cfg.Review.XPCorrect)
	cfg.Review.XPFailed = p.int("STUDYHALL_XP_FAILED", cfg.Review.XPFailed)
	g := &cfg.Review.Grading
	g.PerfectMs = int64(p.int("STUDYHALL_GRADE_PERFECT_MS", int(g.PerfectMs)))
	g.GoodMs = int64(p.int("STUDYHALL_GRADE_GOOD_MS", int(g.GoodMs)))
	g.HardMs = int64(p.int("STUDYHALL_GRADE_HARD_MS", int(g.HardMs)))
	g.QuickWrongMs = int64(p.int("STUDYHALL_GRADE_QUICK_WRONG_MS", int(g.QuickWrongMs)))
	if err := g.Validate(); err != nil {
		p.fail("STUDYHALL_GRADE_*", err)
	}

	cfg.Lock.Backend = p.str("STUDYHALL_LOCK", cfg.Lock.Backend)
	if b := cfg.Lock.Backend; b != LockLocal && b != LockRedis {
		p.fail("STUDYHALL_LOCK", fmt.Errorf("unknown lock backend %q", b))
	}
	cfg.Lock.Redis.Addr = p.str("STUDYHALL_REDIS_ADDR", cfg.Lock.Redis.Addr)
	cfg.Lock.Redis.TTL = p.duration("STUDYHALL_LOCK_TTL", cfg.Lock.Redis.TTL)

	cfg.LLM = llm.ConfigFromEnv()

	cfg.Server.Addr = p.str("STUDYHALL_ADDR", cfg.Server.Addr)
	if origins := p.str("STUDYHALL_CORS_ORIGINS", ""); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	cfg.Server.CatalogRefresh = p.duration("STUDYHALL_CATALOG_REFRESH", cfg.Server.CatalogRefresh)

	cfg.LogMode = p.str("STUDYHALL_LOG_MODE", cfg.LogMode)
	cfg.User = p.str("STUDYHALL_USER", cfg.User)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type parser struct {
	errs []error
}

func (p *parser) fail(key string, err error) {
	p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) int(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, fmt.Errorf("not an integer: %q", v))
		return def
	}
	if n < 0 {
		p.fail(key, fmt.Errorf("must not be negative: %d", n))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, fmt.Errorf("not a boolean: %q", v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		p.fail(key, fmt.Errorf("not a duration: %q", v))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
