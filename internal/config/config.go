package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
	LogPretty      bool
	StaticDir      string

	QuestionsFile string
	PostgresURL   string
	PostgresSeed  bool

	TimePerPlayer time.Duration
	WrongPenalty  int
	RevealDelay   time.Duration
	TickInterval  time.Duration

	SweepInterval   time.Duration
	FinishedRoomTTL time.Duration
	IdleRoomTTL     time.Duration

	WSRateLimit float64
	WSRateBurst int
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	p := parser{lookup: lookup}
	cfg := Config{
		Port:           p.str("PORT", "8080"),
		AllowedOrigins: p.list("ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       p.str("LOG_LEVEL", "info"),
		LogPretty:      p.boolean("LOG_PRETTY", false),
		StaticDir:      p.str("STATIC_DIR", ""),

		QuestionsFile: p.str("QUESTIONS_FILE", ""),
		PostgresURL:   p.str("POSTGRES_URL", ""),
		PostgresSeed:  p.boolean("POSTGRES_SEED", true),

		TimePerPlayer: p.duration("TIME_PER_PLAYER", internal.TimePerPlayer),
		WrongPenalty:  p.integer("WRONG_PENALTY", internal.WrongPenalty),
		RevealDelay:   p.duration("REVEAL_DELAY", internal.RevealDuration),
		TickInterval:  p.duration("TICK_INTERVAL", internal.TickInterval),

		SweepInterval:   p.duration("SWEEP_INTERVAL", 30*time.Second),
		FinishedRoomTTL: p.duration("FINISHED_ROOM_TTL", 10*time.Minute),
		IdleRoomTTL:     p.duration("IDLE_ROOM_TTL", time.Hour),

		WSRateLimit: p.float("WS_RATE_LIMIT", 5),
		WSRateBurst: p.integer("WS_RATE_BURST", 10),
	}
	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	log.Debug().Str("port", cfg.Port).Bool("postgres", cfg.PostgresURL != "").Msg("[config.Load] configuration loaded")
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.TimePerPlayer < time.Second {
		errs = append(errs, fmt.Errorf("TIME_PER_PLAYER must be at least 1s, got %v", c.TimePerPlayer))
	}
	if c.WrongPenalty < 0 {
		errs = append(errs, fmt.Errorf("WRONG_PENALTY must not be negative, got %d", c.WrongPenalty))
	}
	if c.RevealDelay <= 0 {
		errs = append(errs, fmt.Errorf("REVEAL_DELAY must be positive, got %v", c.RevealDelay))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("TICK_INTERVAL must be positive, got %v", c.TickInterval))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("SWEEP_INTERVAL must be positive, got %v", c.SweepInterval))
	}
	if c.FinishedRoomTTL < 0 || c.IdleRoomTTL < 0 {
		errs = append(errs, errors.New("room TTLs must not be negative"))
	}
	if c.WSRateLimit <= 0 || c.WSRateBurst <= 0 {
		errs = append(errs, errors.New("WS_RATE_LIMIT and WS_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (p *parser) str(key, fallback string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return fallback
}

func (p *parser) list(key string, fallback []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func (p *parser) boolean(key string, fallback bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func (p *parser) integer(key string, fallback int) int {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

// duration accepts Go duration strings ("90s") or bare integers as seconds.
func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return fallback
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
