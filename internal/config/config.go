package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime settings for the corridor dispatch service.
type Config struct {
	Addr             string
	TickInterval     time.Duration
	EventLogCapacity int
	Autostart        bool
	// Seed fixes the throughput randomness when non-zero.
	Seed int64

	DatabaseURL string

	KafkaBrokers []string
	KafkaTopic   string

	S3Bucket string
	S3Prefix string

	JWTSecret     string
	JournalBuffer int
}

const (
	defaultAddr             = ":4000"
	defaultTickInterval     = time.Second
	defaultEventLogCapacity = 50
	defaultKafkaTopic       = "corridor.journal"
	defaultJournalBuffer    = 256
)

// Load reads environment variables and returns a Config.
func Load() (Config, error) {
	addr := getEnv("CORRIDOR_ADDR", "")
	if addr == "" {
		addr = defaultAddr
		if p := os.Getenv("PORT"); p != "" {
			addr = ":" + p
		}
	}

	cfg := Config{
		Addr:             addr,
		TickInterval:     getDuration("CORRIDOR_TICK_INTERVAL", defaultTickInterval),
		EventLogCapacity: getInt("CORRIDOR_EVENT_LOG_CAPACITY", defaultEventLogCapacity),
		Autostart:        getBool("CORRIDOR_AUTOSTART", true),
		Seed:             getInt64("CORRIDOR_SEED", 0),
		DatabaseURL:      firstNonEmpty(os.Getenv("CORRIDOR_DATABASE_URL"), os.Getenv("DATABASE_URL")),
		KafkaBrokers:     splitList(os.Getenv("CORRIDOR_KAFKA_BROKERS")),
		KafkaTopic:       getEnv("CORRIDOR_KAFKA_TOPIC", defaultKafkaTopic),
		S3Bucket:         os.Getenv("CORRIDOR_S3_BUCKET"),
		S3Prefix:         strings.Trim(os.Getenv("CORRIDOR_S3_PREFIX"), "/"),
		JWTSecret:        os.Getenv("CORRIDOR_JWT_SECRET"),
		JournalBuffer:    getInt("CORRIDOR_JOURNAL_BUFFER", defaultJournalBuffer),
	}

	if cfg.S3Prefix != "" && cfg.S3Bucket == "" {
		return Config{}, fmt.Errorf("CORRIDOR_S3_PREFIX is set but CORRIDOR_S3_BUCKET is empty")
	}
	return cfg, nil
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		ok, err := strconv.ParseBool(v)
		if err == nil {
			return ok
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
