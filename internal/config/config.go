// Package config loads client settings from config.yaml, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config keys.
const (
	KeyAPIBaseURL = "api_base_url"
	KeyLanguage   = "language"
	KeyDebounceMS = "debounce_ms"
	KeyPageSize   = "page_size"
	KeyDataDir    = "data_dir"
)

// Keys lists every key config get and config set accept.
var Keys = []string{KeyAPIBaseURL, KeyLanguage, KeyDebounceMS, KeyPageSize, KeyDataDir}

// Environment overrides. The first set variable wins.
var envBindings = map[string][]string{
	KeyAPIBaseURL: {"MYTREE_API_BASE_URL", "NEXT_PUBLIC_API_BASE_URL"},
	KeyLanguage:   {"MYTREE_LANGUAGE"},
	KeyDebounceMS: {"MYTREE_DEBOUNCE_MS"},
	KeyPageSize:   {"MYTREE_PAGE_SIZE"},
	KeyDataDir:    {"MYTREE_DATA_DIR"},
}

// ErrUnknownKey is returned by Get and Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

// DotEnvFile is the .env file read from the working directory.
var DotEnvFile = ".env"

// fileContents is the layout of a fresh config.yaml.
type fileContents struct {
	APIBaseURL string `yaml:"api_base_url"`
	Language   string `yaml:"language"`
	DebounceMS int    `yaml:"debounce_ms"`
	PageSize   int    `yaml:"page_size"`
}

const header = "# mytree client configuration\n# Environment: MYTREE_API_BASE_URL overrides api_base_url.\n\n"

// Loaded is the result of Load: the resolved settings together with the
// viper instance and file path they came from.
type Loaded struct {
	types.Config
	DataDir string       `json:"data_dir,omitempty"`
	Path    string       `json:"path"`
	Viper   *viper.Viper `json:"-"`
}

// Path returns the config.yaml location inside dir.
func Path(dir string) string { return filepath.Join(dir, configFileExt) }

// Load reads config.yaml from dir, creating the directory and a default
// file on first run, then applies .env and environment overrides.
func Load(dir string) (*Loaded, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyAPIBaseURL, types.DefaultAPIBaseURL)
	v.SetDefault(KeyLanguage, types.DefaultLanguage)
	v.SetDefault(KeyDebounceMS, types.DefaultDebounceMS)
	v.SetDefault(KeyPageSize, types.DefaultPageSize)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		APIBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIBaseURL)), "/"),
		Language:   v.GetString(KeyLanguage),
		DebounceMS: v.GetInt(KeyDebounceMS),
		PageSize:   v.GetInt(KeyPageSize),
	}
	if cfg.DebounceMS < 0 {
		cfg.DebounceMS = types.DefaultDebounceMS
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = types.DefaultPageSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loaded{Config: cfg, DataDir: v.GetString(KeyDataDir), Path: Path(dir), Viper: v}, nil
}

func loadDotEnv() error {
	if DotEnvFile == "" {
		return nil
	}
	err := godotenv.Load(DotEnvFile)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", DotEnvFile, err)
}

// ensureDefaultConfigFile writes config.yaml with default values if the
// file does not exist in dir.
func ensureDefaultConfigFile(dir string) error {
	path := Path(dir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&fileContents{
		APIBaseURL: types.DefaultAPIBaseURL,
		Language:   types.DefaultLanguage,
		DebounceMS: types.DefaultDebounceMS,
		PageSize:   types.DefaultPageSize,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(header), data...), 0o644)
}

// Get returns the effective value of key.
func (l *Loaded) Get(key string) (string, error) {
	switch key {
	case KeyAPIBaseURL:
		return l.APIBaseURL, nil
	case KeyLanguage:
		return l.Language, nil
	case KeyDebounceMS:
		return strconv.Itoa(l.DebounceMS), nil
	case KeyPageSize:
		return strconv.Itoa(l.PageSize), nil
	case KeyDataDir:
		return l.DataDir, nil
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
}

// Set validates value and persists it under key in the config.yaml inside
// dir. Comments in the file are not preserved.
func Set(dir, key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}
	stored, err := parseValue(key, value)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(dir); err != nil {
		return err
	}

	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc[key] = stored

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(header), out...), 0o644)
}

func parseValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case KeyAPIBaseURL:
		value = strings.TrimRight(value, "/")
		probe := types.Config{APIBaseURL: value, Language: types.DefaultLanguage}
		if err := probe.Validate(); err != nil {
			return nil, err
		}
		return value, nil
	case KeyLanguage:
		if !types.ValidLanguage(value) {
			return nil, fmt.Errorf("%w: %q", types.ErrInvalidLanguage, value)
		}
		return value, nil
	case KeyDebounceMS, KeyPageSize:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || (key == KeyPageSize && n == 0) {
			return nil, &types.ValidationError{Field: key, Message: fmt.Sprintf("%s must be a positive integer, got %q", key, value)}
		}
		return n, nil
	}
	return value, nil
}
