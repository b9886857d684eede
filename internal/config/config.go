package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type APIConfig struct {
	BaseURL         string `json:"base_url"`
	Prefix          string `json:"prefix"`
	TimeoutMS       int    `json:"timeout_ms"`
	WithCredentials bool   `json:"with_credentials"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type LogConfig struct {
	Level string `json:"level"`
	// File 为空时写入 <base_dir>/logs/tasker.log；"-" 表示 stderr。
	// File defaults to <base_dir>/logs/tasker.log when empty; "-" means stderr.
	File string `json:"file"`
}

type UIConfig struct {
	Mode   string `json:"mode"`
	Locale string `json:"locale"`
}

type Config struct {
	API     APIConfig     `json:"api"`
	Storage StorageConfig `json:"storage"`
	Log     LogConfig     `json:"log"`
	UI      UIConfig      `json:"ui"`
}

type fileAPIConfig struct {
	BaseURL         *string `json:"base_url"`
	Prefix          *string `json:"prefix"`
	TimeoutMS       *int    `json:"timeout_ms"`
	WithCredentials *bool   `json:"with_credentials"`
}

type fileConfig struct {
	API     *fileAPIConfig `json:"api"`
	Storage *StorageConfig `json:"storage"`
	Log     *LogConfig     `json:"log"`
	UI      *UIConfig      `json:"ui"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:         DefaultBaseURL,
			Prefix:          DefaultAPIPrefix,
			TimeoutMS:       0,
			WithCredentials: true,
		},
		Storage: StorageConfig{BaseDir: "~/.tasker"},
		Log:     LogConfig{Level: "info"},
		UI:      UIConfig{Mode: UIModeREPL},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if envPath := strings.TrimSpace(os.Getenv("TASKER_CONFIG_PATH")); envPath != "" {
		resolvedPath = envPath
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".tasker", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"tasker.config.json",
		".tasker/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %q: %w", resolved, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(stripJSONComments(data), &fc); err != nil {
		return fmt.Errorf("parse config %q: %w", resolved, err)
	}
	applyFileConfig(cfg, fc)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.API != nil {
		if fc.API.BaseURL != nil {
			cfg.API.BaseURL = *fc.API.BaseURL
		}
		if fc.API.Prefix != nil {
			cfg.API.Prefix = *fc.API.Prefix
		}
		if fc.API.TimeoutMS != nil {
			cfg.API.TimeoutMS = *fc.API.TimeoutMS
		}
		if fc.API.WithCredentials != nil {
			cfg.API.WithCredentials = *fc.API.WithCredentials
		}
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
	if fc.UI != nil {
		if strings.TrimSpace(fc.UI.Mode) != "" {
			cfg.UI.Mode = fc.UI.Mode
		}
		if strings.TrimSpace(fc.UI.Locale) != "" {
			cfg.UI.Locale = fc.UI.Locale
		}
	}
}

func normalize(cfg *Config) error {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.API.Prefix = NormalizePrefix(cfg.API.Prefix)
	if cfg.API.TimeoutMS < 0 {
		cfg.API.TimeoutMS = 0
	}

	storageDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return err
	}
	if storageDir == "" {
		if storageDir, err = expandPath(Default().Storage.BaseDir); err != nil {
			return err
		}
	}
	cfg.Storage.BaseDir = storageDir

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Log.Level = Default().Log.Level
	}
	cfg.Log.File = strings.TrimSpace(cfg.Log.File)
	if cfg.Log.File != "" && cfg.Log.File != "-" {
		if cfg.Log.File, err = expandPath(cfg.Log.File); err != nil {
			return err
		}
	}

	cfg.UI.Mode = strings.ToLower(strings.TrimSpace(cfg.UI.Mode))
	if cfg.UI.Mode != UIModeTUI {
		cfg.UI.Mode = UIModeREPL
	}
	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("TASKER_BASE_URL")); v != "" {
		cfg.API.BaseURL = v
	}
	if v, ok := os.LookupEnv("TASKER_API_PREFIX"); ok {
		cfg.API.Prefix = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKER_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid TASKER_TIMEOUT_MS: %q", v)
		}
		cfg.API.TimeoutMS = n
	}
	if v := strings.TrimSpace(os.Getenv("TASKER_HOME")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKER_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TASKER_LANG")); v != "" {
		cfg.UI.Locale = v
	}

	return cfg, normalize(&cfg)
}

// NormalizePrefix 归一化路径前缀：以 "/" 开头、无尾部 "/"；空串表示不加前缀。
// NormalizePrefix returns prefix with a leading slash and no trailing slash; "" means no prefix.
func NormalizePrefix(prefix string) string {
	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, strings.TrimPrefix(path, "~/"))
		}
	}
	return filepath.Abs(path)
}

func stripJSONComments(data []byte) []byte {
	const (
		stateNormal = iota
		stateString
		stateLineComment
		stateBlockComment
	)

	state := stateNormal
	escaped := false
	out := bytes.Buffer{}

	for i := 0; i < len(data); i++ {
		c := data[i]
		next := byte(0)
		if i+1 < len(data) {
			next = data[i+1]
		}

		switch state {
		case stateNormal:
			if c == '"' {
				state = stateString
				out.WriteByte(c)
				continue
			}
			if c == '/' && next == '/' {
				state = stateLineComment
				i++
				continue
			}
			if c == '/' && next == '*' {
				state = stateBlockComment
				i++
				continue
			}
			out.WriteByte(c)
		case stateString:
			out.WriteByte(c)
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
				out.WriteByte(c)
			}
		case stateBlockComment:
			if c == '*' && next == '/' {
				state = stateNormal
				i++
			}
		}
	}

	return out.Bytes()
}
