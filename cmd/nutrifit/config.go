// Config loading for the nutrifit CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/nutrifit/internal/paths"
	"github.com/mesh-intelligence/nutrifit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyLogLevel      = "log_level"

	defaultLogLevel = "warn"
)

// envSettings are read from the environment after .env is loaded. A set
// variable wins over config.yaml.
type envSettings struct {
	LogLevel  string `env:"NUTRIFIT_LOG_LEVEL"`
	Ephemeral bool   `env:"NUTRIFIT_EPHEMERAL"`
}

func parseEnv() (envSettings, error) {
	var s envSettings
	if err := env.Parse(&s); err != nil {
		return envSettings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// configFile is the shape of config.yaml.
type configFile struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	SyncStrategy  string `yaml:"sync_strategy"`
	BatchSize     int    `yaml:"batch_size,omitempty"`
	BatchInterval int    `yaml:"batch_interval,omitempty"`
	LogLevel      string `yaml:"log_level"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:      types.BackendSQLite,
		SyncStrategy: types.SyncImmediate,
		LogLevel:     defaultLogLevel,
	}
}

// loadConfig reads config.yaml from configDir, creating the directory and
// a default file on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), defaultConfigFile()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeySyncStrategy, types.SyncImmediate)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing marshals cfg to path unless the file exists.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# nutrifit configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

// storageConfig builds the backend configuration from flags and
// config.yaml.
func (a *app) storageConfig() (types.Config, error) {
	backend := a.cfg.GetString(cfgKeyBackend)
	if a.flagEphemeral || a.env.Ephemeral {
		backend = types.BackendMemory
	}

	cfg := types.Config{
		Backend:       backend,
		SyncStrategy:  a.cfg.GetString(cfgKeySyncStrategy),
		BatchSize:     a.cfg.GetInt(cfgKeyBatchSize),
		BatchInterval: a.cfg.GetInt(cfgKeyBatchInterval),
	}
	if backend != types.BackendMemory {
		dataDir, err := paths.ResolveDataDir(a.flagDataDir, a.cfg.GetString(cfgKeyDataDir))
		if err != nil {
			return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", paths.ConfigFile(a.configDir), err)
	}
	return cfg, nil
}
