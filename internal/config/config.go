package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	DataForSEO DataForSEO `mapstructure:"dataforseo"`
	Analysis   Analysis   `mapstructure:"analysis"`
	Cache      Cache      `mapstructure:"cache"`
	Server     Server     `mapstructure:"server"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini     GeminiConfig `mapstructure:"gemini"`
	SampleSize int          `mapstructure:"sample_size"` // Keyword records sent to the model
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// DataForSEO holds the keyword data provider configuration
type DataForSEO struct {
	Login        string `mapstructure:"login"`
	Password     string `mapstructure:"password"`
	BaseURL      string `mapstructure:"base_url"`
	Timeout      string `mapstructure:"timeout"`
	LanguageCode string `mapstructure:"language_code"`
	Concurrency  int    `mapstructure:"concurrency"`
}

// Analysis holds gap analysis defaults
type Analysis struct {
	TargetGapCount int      `mapstructure:"target_gap_count"`
	LocationCode   int      `mapstructure:"location_code"`
	StrategyOrder  []string `mapstructure:"strategy_order"`
	MockSeed       int64    `mapstructure:"mock_seed"` // 0 means time-seeded
}

// Cache holds result cache configuration
type Cache struct {
	Backend   string      `mapstructure:"backend"` // sqlite, redis or none
	Directory string      `mapstructure:"directory"`
	TTL       string      `mapstructure:"ttl"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Server holds HTTP API configuration
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	CORS         CORS   `mapstructure:"cors"`
}

// CORS holds cross-origin settings for the HTTP API
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var validStrategies = map[string]bool{
	"local":        true,
	"intersection": true,
	"ai":           true,
	"mock":         true,
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".gapscout")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".gapscout-cache")

	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.2)
	viper.SetDefault("ai.sample_size", 50)

	viper.SetDefault("dataforseo.base_url", "https://api.dataforseo.com")
	viper.SetDefault("dataforseo.timeout", "45s")
	viper.SetDefault("dataforseo.language_code", "en")
	viper.SetDefault("dataforseo.concurrency", 3)

	viper.SetDefault("analysis.target_gap_count", 30)
	viper.SetDefault("analysis.location_code", 2840) // United States
	viper.SetDefault("analysis.strategy_order", []string{"local", "intersection", "ai", "mock"})
	viper.SetDefault("analysis.mock_seed", 0)

	viper.SetDefault("cache.backend", "sqlite")
	viper.SetDefault("cache.directory", ".gapscout-cache")
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.redis.addr", "localhost:6379")
	viper.SetDefault("cache.redis.db", 0)
	viper.SetDefault("cache.redis.prefix", "gapscout:")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.cors.allowed_origins", []string{"*"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("dataforseo.login", []string{
		"DATAFORSEO_LOGIN",
		"DATAFORSEO_USERNAME",
	})

	bindEnvKeys("dataforseo.password", []string{
		"DATAFORSEO_PASSWORD",
		"DATAFORSEO_API_PASSWORD",
	})

	bindEnvKeys("cache.redis.addr", []string{
		"REDIS_ADDR",
		"REDIS_URL",
	})

	bindEnvKeys("cache.redis.password", []string{
		"REDIS_PASSWORD",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"GAPSCOUT_DEBUG",
	})

	bindEnvKeys("logging.level", []string{
		"LOG_LEVEL",
		"GAPSCOUT_LOG_LEVEL",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Cache.Directory != "" {
		config.Cache.Directory = expandPath(config.Cache.Directory)
	}
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	config.Cache.Backend = strings.ToLower(strings.TrimSpace(config.Cache.Backend))

	for i, name := range config.Analysis.StrategyOrder {
		config.Analysis.StrategyOrder[i] = strings.ToLower(strings.TrimSpace(name))
	}

	durations := map[string]string{
		"ai.gemini.timeout":    config.AI.Gemini.Timeout,
		"dataforseo.timeout":   config.DataForSEO.Timeout,
		"cache.ttl":            config.Cache.TTL,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures the configuration is usable. Provider credentials are optional:
// strategies without credentials are left out of the fallback chain.
func validateConfig(config *Config) error {
	var errors []string

	if len(config.Analysis.StrategyOrder) == 0 {
		errors = append(errors, "analysis.strategy_order must name at least one strategy")
	}
	for _, name := range config.Analysis.StrategyOrder {
		if !validStrategies[name] {
			errors = append(errors, fmt.Sprintf("Unknown strategy: %s. Supported: local, intersection, ai, mock", name))
		}
	}

	if config.Analysis.TargetGapCount <= 0 {
		errors = append(errors, "analysis.target_gap_count must be positive")
	}

	switch config.Cache.Backend {
	case "sqlite", "none", "":
	case "redis":
		if config.Cache.Redis.Addr == "" {
			errors = append(errors, "Redis cache requires an address. Set REDIS_ADDR or cache.redis.addr")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown cache backend: %s. Supported: sqlite, redis, none", config.Cache.Backend))
	}

	if (config.DataForSEO.Login == "") != (config.DataForSEO.Password == "") {
		errors = append(errors, "DataForSEO requires both login and password. Set DATAFORSEO_LOGIN and DATAFORSEO_PASSWORD")
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("server.port out of range: %d", config.Server.Port))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetAI() AI                 { return Get().AI }
func GetDataForSEO() DataForSEO { return Get().DataForSEO }
func GetAnalysis() Analysis     { return Get().Analysis }
func GetCache() Cache           { return Get().Cache }
func GetServer() Server         { return Get().Server }
func GetLogging() Logging       { return Get().Logging }
func IsDebugMode() bool         { return Get().App.Debug }

// HasGemini returns true if a usable Gemini API key is configured
func HasGemini() bool {
	return isValidAPIKey(Get().AI.Gemini.APIKey)
}

// HasDataForSEO returns true if DataForSEO credentials are configured
func HasDataForSEO() bool {
	d := Get().DataForSEO
	return isValidAPIKey(d.Login) && isValidAPIKey(d.Password)
}

// Duration parses a validated duration string, falling back when empty.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-dataforseo-login", "your-dataforseo-password",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
