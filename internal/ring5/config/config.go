// Package config loads the engine's runtime configuration (worker pool
// size, default glob, output directory, strategy selection) via viper,
// and the declarative Stat Request document describing what to extract.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkerCount = errors.New("worker pool size must be positive")
	ErrInvalidGlob        = errors.New("default glob must not be empty")
	ErrInvalidOutputDir   = errors.New("default output directory must not be empty")
	ErrInvalidStrategy    = errors.New("unknown strategy name")
)

// Default configuration values.
const (
	defaultWorkerPoolSize = 4
	defaultGlob           = "*.txt"
	defaultOutputDir      = "./ring5-out"
	defaultStrategyName   = "simple"
)

// Config holds engine-level runtime configuration.
type Config struct {
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	DefaultGlob    string `mapstructure:"default_glob"`
	OutputDir      string `mapstructure:"output_dir"`
	Strategy       string `mapstructure:"strategy"`
	ScannerPath    string `mapstructure:"scanner_path"`
	TokenizerPath  string `mapstructure:"tokenizer_path"`
}

// knownStrategies mirrors the strategy names engine.New registers (§4.8).
var knownStrategies = map[string]struct{}{
	"simple":       {},
	"config-aware": {},
}

// LoadConfig loads configuration from an optional file plus RING5_*
// environment variable overrides, mirroring the teacher's
// viper-plus-mapstructure pattern.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("ring5")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/ring5")
	}

	viperCfg.SetEnvPrefix("RING5")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("worker_pool_size", defaultWorkerPoolSize)
	viperCfg.SetDefault("default_glob", defaultGlob)
	viperCfg.SetDefault("output_dir", defaultOutputDir)
	viperCfg.SetDefault("strategy", defaultStrategyName)
}

func validateConfig(cfg *Config) error {
	if cfg.WorkerPoolSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, cfg.WorkerPoolSize)
	}

	if cfg.DefaultGlob == "" {
		return ErrInvalidGlob
	}

	if cfg.OutputDir == "" {
		return ErrInvalidOutputDir
	}

	if _, ok := knownStrategies[cfg.Strategy]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidStrategy, cfg.Strategy)
	}

	return nil
}
