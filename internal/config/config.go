package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kodi-recall/internal/logging"
)

type Config struct {
	KodiHost     string
	KodiHTTPPort int
	KodiWSPort   int
	KodiUsername string
	KodiPassword string
	KodiTimeout  time.Duration

	DataDir   string
	StorePath string

	// Playback list
	MaxEntries       int
	ProgressInterval time.Duration

	// HTTP API
	ListenAddr string
	AdminToken string

	// Toast on switchback via the host GUI
	NotifyKodi bool
}

const storeFileName = "playback_list.json"

func Load() (Config, error) {
	log := logging.WithComponent("config")

	dataDir := env("DATA_DIR", "./data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}

	cfg := Config{
		KodiHost:         env("KODI_HOST", "127.0.0.1"),
		KodiHTTPPort:     envInt("KODI_HTTP_PORT", 8080),
		KodiWSPort:       envInt("KODI_WS_PORT", 9090),
		KodiUsername:     env("KODI_USERNAME", "kodi"),
		KodiPassword:     env("KODI_PASSWORD", ""),
		KodiTimeout:      envDuration("KODI_TIMEOUT", 10*time.Second),
		DataDir:          dataDir,
		StorePath:        filepath.Join(dataDir, storeFileName),
		MaxEntries:       envInt("MAX_ENTRIES", 10),
		ProgressInterval: envDuration("PROGRESS_INTERVAL", 10*time.Second),
		ListenAddr:       env("LISTEN_ADDR", ":8585"),
		AdminToken:       env("ADMIN_TOKEN", ""),
		NotifyKodi:       envBool("NOTIFY_KODI", false),
	}

	log.Info().
		Str("kodi", cfg.KodiHTTPBase()).
		Str("store", cfg.StorePath).
		Int("max_entries", cfg.MaxEntries).
		Msg("configuration loaded")
	if cfg.KodiPassword == "" {
		log.Warn().Msg("KODI_PASSWORD is not set; JSON-RPC calls will fail if the host requires auth")
	}
	return cfg, nil
}

// KodiHTTPBase is the base URL of the host webserver (JSON-RPC and image API).
func (c Config) KodiHTTPBase() string {
	return fmt.Sprintf("http://%s:%d", c.KodiHost, c.KodiHTTPPort)
}

// KodiWSURL is the host notification endpoint.
func (c Config) KodiWSURL() string {
	return fmt.Sprintf("ws://%s:%d/jsonrpc", c.KodiHost, c.KodiWSPort)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log := logging.WithComponent("config")
		log.Warn().Str("key", key).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log := logging.WithComponent("config")
		log.Warn().Str("key", key).Str("value", v).Msg("not a duration, using default")
	}
	return def
}
