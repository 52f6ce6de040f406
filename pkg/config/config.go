/*
Package config manages TOML config for WordSpell.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bastiangx/wordspell/internal/utils"
	"github.com/bastiangx/wordspell/pkg/match"
	"github.com/bastiangx/wordspell/pkg/vocab"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Matching   MatchingConfig   `toml:"matching"`
	Vocabulary VocabularyConfig `toml:"vocabulary"`
	Cache      CacheConfig      `toml:"cache"`
	Server     ServerConfig     `toml:"server"`
}

// MatchingConfig selects and tunes the matchers.
type MatchingConfig struct {
	Kind                   string `toml:"kind"`
	ResultLimit            int    `toml:"result_limit"`
	FuzzyMinScore          int    `toml:"fuzzy_min_score"`
	FuzzyFirstCharFilter   bool   `toml:"fuzzy_first_char_filter"`
	CorrectionMaxDistance  int    `toml:"correction_max_distance"`
	CorrectionMaxIndexKeys int    `toml:"correction_max_index_keys"`
	BackgroundIndex        bool   `toml:"background_index"`
	PrefixTrie             bool   `toml:"prefix_trie"`
}

// VocabularyConfig lists the active vocabularies and where their files live.
type VocabularyConfig struct {
	Active []string `toml:"active"`
	Dir    string   `toml:"dir"`
}

// CacheConfig holds result cache options.
type CacheConfig struct {
	Capacity int `toml:"capacity"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxQueryLength int  `toml:"max_query_length"`
	ReloadConfig   bool `toml:"reload_config"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "wordspell")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "wordspell")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordspell/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Matching: MatchingConfig{
			Kind:                  match.Correction.String(),
			ResultLimit:           9,
			FuzzyMinScore:         match.DefaultMinScore,
			CorrectionMaxDistance: 2,
			PrefixTrie:            true,
		},
		Vocabulary: VocabularyConfig{
			Active: vocab.DefaultSet.Strings(),
			Dir:    "vocabularies",
		},
		Cache: CacheConfig{
			Capacity: 200,
		},
		Server: ServerConfig{
			MaxQueryLength: 60,
			ReloadConfig:   true,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file. Values that fail validation are
// reported and the whole file falls back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		config = tryPartialParse(configPath)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// tryPartialParse keeps every well-typed value of a file that failed to
// decode as a whole.
func tryPartialParse(configPath string) *Config {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config
	}

	if section, ok := utils.ExtractSection(tempConfig, "matching"); ok {
		extractMatchingConfig(section, &config.Matching)
	}
	if section, ok := utils.ExtractSection(tempConfig, "vocabulary"); ok {
		extractVocabularyConfig(section, &config.Vocabulary)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		if val, ok := utils.ExtractInt64(section, "capacity"); ok {
			config.Cache.Capacity = val
		}
	}
	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	return config
}

func extractMatchingConfig(data map[string]any, m *MatchingConfig) {
	if val, ok := utils.ExtractString(data, "kind"); ok {
		m.Kind = val
	}
	if val, ok := utils.ExtractInt64(data, "result_limit"); ok {
		m.ResultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "fuzzy_min_score"); ok {
		m.FuzzyMinScore = val
	}
	if val, ok := utils.ExtractBool(data, "fuzzy_first_char_filter"); ok {
		m.FuzzyFirstCharFilter = val
	}
	if val, ok := utils.ExtractInt64(data, "correction_max_distance"); ok {
		m.CorrectionMaxDistance = val
	}
	if val, ok := utils.ExtractInt64(data, "correction_max_index_keys"); ok {
		m.CorrectionMaxIndexKeys = val
	}
	if val, ok := utils.ExtractBool(data, "background_index"); ok {
		m.BackgroundIndex = val
	}
	if val, ok := utils.ExtractBool(data, "prefix_trie"); ok {
		m.PrefixTrie = val
	}
}

func extractVocabularyConfig(data map[string]any, v *VocabularyConfig) {
	if val, ok := utils.ExtractStrings(data, "active"); ok {
		v.Active = val
	}
	if val, ok := utils.ExtractString(data, "dir"); ok {
		v.Dir = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_query_length"); ok {
		server.MaxQueryLength = val
	}
	if val, ok := utils.ExtractBool(data, "reload_config"); ok {
		server.ReloadConfig = val
	}
}

// Validate rejects values no engine could run with.
func (c *Config) Validate() error {
	if _, err := match.ParseKind(c.Matching.Kind); err != nil {
		return err
	}
	if _, err := vocab.NewSet(c.Vocabulary.Active); err != nil {
		return err
	}
	switch {
	case c.Matching.ResultLimit <= 0:
		return fmt.Errorf("%w: result_limit must be positive, got %d", vocab.ErrInvalidInput, c.Matching.ResultLimit)
	case c.Matching.FuzzyMinScore < 0 || c.Matching.FuzzyMinScore > 100:
		return fmt.Errorf("%w: fuzzy_min_score must be within 0-100, got %d", vocab.ErrInvalidInput, c.Matching.FuzzyMinScore)
	case c.Matching.CorrectionMaxDistance < 0:
		return fmt.Errorf("%w: correction_max_distance must not be negative, got %d", vocab.ErrInvalidInput, c.Matching.CorrectionMaxDistance)
	case c.Matching.CorrectionMaxIndexKeys < 0:
		return fmt.Errorf("%w: correction_max_index_keys must not be negative, got %d", vocab.ErrInvalidInput, c.Matching.CorrectionMaxIndexKeys)
	case c.Cache.Capacity <= 0:
		return fmt.Errorf("%w: cache capacity must be positive, got %d", vocab.ErrInvalidInput, c.Cache.Capacity)
	case c.Server.MaxQueryLength <= 0:
		return fmt.Errorf("%w: max_query_length must be positive, got %d", vocab.ErrInvalidInput, c.Server.MaxQueryLength)
	}
	return nil
}

// VocabularySet returns the active vocabularies as a validated set.
func (c *Config) VocabularySet() (vocab.Set, error) {
	return vocab.NewSet(c.Vocabulary.Active)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the matching kind and active vocabularies and saves to file.
func (c *Config) Update(configPath string, kind *match.Kind, active vocab.Set) error {
	if kind != nil {
		c.Matching.Kind = kind.String()
	}
	if len(active) > 0 {
		c.Vocabulary.Active = active.Strings()
	}
	return SaveConfig(c, configPath)
}
