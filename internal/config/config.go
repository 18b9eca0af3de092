// Package config loads the grf2txt configuration: built-in defaults, then the
// YAML file, then GRF2TXT_* environment overrides. Command-line flags are
// applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type LangInfoConfig struct {
	Cache   string        `yaml:"cache"` // SQLite cache path; empty uses the user cache dir
	URL     string        `yaml:"url"`
	TTL     time.Duration `yaml:"ttl"`
	Timeout time.Duration `yaml:"timeout"`
	Offline bool          `yaml:"offline"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type Config struct {
	LangDir        string         `yaml:"lang_dir"`
	UnnamedStrings bool           `yaml:"unnamed_strings"`
	Charset        string         `yaml:"charset"`
	Workers        int            `yaml:"workers"`
	CacheSize      int            `yaml:"cache_size"`
	Strict         bool           `yaml:"strict"`
	MaxSteps       int            `yaml:"max_steps"`
	LangInfo       LangInfoConfig `yaml:"lang_info"`
	Logging        LoggingConfig  `yaml:"logging"`
}

// DefaultLanguageListURL serves the translator's language list as CSV.
const DefaultLanguageListURL = "https://translator.openttd.org/language-list"

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		LangDir:   "lang",
		Charset:   "latin1",
		Workers:   1,
		CacheSize: 4096,
		LangInfo: LangInfoConfig{
			URL:     DefaultLanguageListURL,
			TTL:     16 * time.Hour,
			Timeout: 15 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfig          = "GRF2TXT_CONFIG"
	EnvLangDir         = "GRF2TXT_LANG_DIR"
	EnvUnnamed         = "GRF2TXT_UNNAMED_STRINGS"
	EnvCharset         = "GRF2TXT_CHARSET"
	EnvWorkers         = "GRF2TXT_WORKERS"
	EnvStrict          = "GRF2TXT_STRICT"
	EnvMaxSteps        = "GRF2TXT_MAX_STEPS"
	EnvLangInfoCache   = "GRF2TXT_LANG_INFO_CACHE"
	EnvLangInfoURL     = "GRF2TXT_LANG_INFO_URL"
	EnvLangInfoTTL     = "GRF2TXT_LANG_INFO_TTL"
	EnvLangInfoOffline = "GRF2TXT_OFFLINE"

	// Logging envs, shared with the log package.
	EnvLogLevel  = "GRF2TXT_LOG_LEVEL"
	EnvLogFormat = "GRF2TXT_LOG_FORMAT"
	EnvLogSource = "GRF2TXT_LOG_SOURCE"
	EnvLogFile   = "GRF2TXT_LOG_FILE"
)

// Path returns the per-user config file path.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfig)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(dir, "grf2txt", "config.yaml"), nil
}

// CacheDir returns the per-user cache directory.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(dir, "grf2txt"), nil
}

// Load reads the config file at path (the default path when empty), applies
// defaults and merges environment overrides. A missing file is not an error;
// a malformed one is.
func Load(path string) (Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func mergeInto(dst, src *Config) {
	if s := strings.TrimSpace(src.LangDir); s != "" {
		dst.LangDir = s
	}
	dst.UnnamedStrings = src.UnnamedStrings
	if s := strings.TrimSpace(src.Charset); s != "" {
		dst.Charset = strings.ToLower(s)
	}
	if src.Workers > 0 {
		dst.Workers = src.Workers
	}
	if src.CacheSize != 0 {
		dst.CacheSize = src.CacheSize
	}
	dst.Strict = src.Strict
	if src.MaxSteps > 0 {
		dst.MaxSteps = src.MaxSteps
	}

	if s := strings.TrimSpace(src.LangInfo.Cache); s != "" {
		dst.LangInfo.Cache = s
	}
	if s := strings.TrimSpace(src.LangInfo.URL); s != "" {
		dst.LangInfo.URL = s
	}
	if src.LangInfo.TTL != 0 {
		dst.LangInfo.TTL = src.LangInfo.TTL
	}
	if src.LangInfo.Timeout != 0 {
		dst.LangInfo.Timeout = src.LangInfo.Timeout
	}
	dst.LangInfo.Offline = src.LangInfo.Offline

	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *Config) {
	env := func(key string) string { return strings.TrimSpace(os.Getenv(key)) }

	if v := env(EnvLangDir); v != "" {
		cfg.LangDir = v
	}
	if v := env(EnvUnnamed); v != "" {
		cfg.UnnamedStrings = envBool(v)
	}
	if v := env(EnvCharset); v != "" {
		cfg.Charset = strings.ToLower(v)
	}
	if v := env(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := env(EnvStrict); v != "" {
		cfg.Strict = envBool(v)
	}
	if v := env(EnvMaxSteps); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxSteps = n
		}
	}
	if v := env(EnvLangInfoCache); v != "" {
		cfg.LangInfo.Cache = v
	}
	if v := env(EnvLangInfoURL); v != "" {
		cfg.LangInfo.URL = v
	}
	if v := env(EnvLangInfoTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LangInfo.TTL = d
		}
	}
	if v := env(EnvLangInfoOffline); v != "" {
		cfg.LangInfo.Offline = envBool(v)
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the key is overridden by the
// environment.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "lang_dir":
		name = EnvLangDir
	case "unnamed_strings":
		name = EnvUnnamed
	case "charset":
		name = EnvCharset
	case "workers":
		name = EnvWorkers
	case "strict":
		name = EnvStrict
	case "max_steps":
		name = EnvMaxSteps
	case "lang_info.cache":
		name = EnvLangInfoCache
	case "lang_info.url":
		name = EnvLangInfoURL
	case "lang_info.ttl":
		name = EnvLangInfoTTL
	case "lang_info.offline":
		name = EnvLangInfoOffline
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
