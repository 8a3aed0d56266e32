package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pulse-mcp/internal/tracker"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Tracker             tracker.Config
	DataPath            string
	LogDir              string
	CacheDir            string
	CacheTTL            time.Duration
	RedisURL            string
	PersistLateStatus   bool
	EnableMermaidCharts bool
	HTTPAddr            string
}

// fileConfig is the optional YAML layer, overridden by the environment.
type fileConfig struct {
	API struct {
		URL            string `yaml:"url"`
		Token          string `yaml:"token"`
		TokenFile      string `yaml:"token_file"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Cache struct {
		TTLSeconds int    `yaml:"ttl_seconds"`
		RedisURL   string `yaml:"redis_url"`
	} `yaml:"cache"`
	PersistLateStatus *bool  `yaml:"persist_late_status"`
	MermaidCharts     bool   `yaml:"mermaid_charts"`
	HTTPAddr          string `yaml:"http_addr"`
	DataPath          string `yaml:"data_path"`
}

// Load loads the configuration from .env files, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Optional YAML defaults
	var fc fileConfig
	if path := os.Getenv("PULSE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &fc); err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	// 4. Resolve Data Paths
	dataPath := getEnv("DATA_PATH", fc.DataPath)
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	timeoutSecs, err := getEnvInt("PULSE_REQUEST_TIMEOUT_SECONDS", orDefault(fc.API.TimeoutSeconds, 30))
	if err != nil {
		return nil, err
	}
	ttlSecs, err := getEnvInt("PULSE_CACHE_TTL_SECONDS", orDefault(fc.Cache.TTLSeconds, 300))
	if err != nil {
		return nil, err
	}

	persistLate := true
	if fc.PersistLateStatus != nil {
		persistLate = *fc.PersistLateStatus
	}

	cfg := &AppConfig{
		Tracker: tracker.Config{
			BaseURL:   getEnv("PULSE_API_URL", fc.API.URL),
			Token:     getEnv("PULSE_API_TOKEN", fc.API.Token),
			TokenFile: getEnv("PULSE_TOKEN_FILE", fc.API.TokenFile),
			Timeout:   time.Duration(timeoutSecs) * time.Second,
		},
		DataPath:            dataPath,
		LogDir:              logDir,
		CacheDir:            cacheDir,
		CacheTTL:            time.Duration(ttlSecs) * time.Second,
		RedisURL:            getEnv("PULSE_REDIS_URL", fc.Cache.RedisURL),
		PersistLateStatus:   getEnvBool("PULSE_PERSIST_LATE_STATUS", persistLate),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", fc.MermaidCharts),
		HTTPAddr:            getEnv("PULSE_HTTP_ADDR", fc.HTTPAddr),
	}

	if cfg.Tracker.BaseURL == "" {
		log.Warn().Msg("PULSE_API_URL is not set; every request will fall back to cached or default data")
	}

	return cfg, nil
}

func loadFromFile(path string, fc *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive, got %d", key, n)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
