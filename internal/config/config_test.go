package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKER_CONFIG_PATH", "")
	work = t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, work
}

func TestLoadDefaults(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Fatalf("base_url=%q", cfg.API.BaseURL)
	}
	if cfg.API.Prefix != "/api" {
		t.Fatalf("prefix=%q", cfg.API.Prefix)
	}
	if !cfg.API.WithCredentials {
		t.Fatalf("with_credentials expected true by default")
	}
	if cfg.Storage.BaseDir != filepath.Join(home, ".tasker") {
		t.Fatalf("base_dir=%q", cfg.Storage.BaseDir)
	}
	if cfg.UI.Mode != UIModeREPL || cfg.Log.Level != "info" {
		t.Fatalf("unexpected ui/log defaults: %+v %+v", cfg.UI, cfg.Log)
	}
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home, _ := isolate(t)

	globalDir := filepath.Join(home, ".tasker")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "api": {"base_url": "https://global.example.com/", "timeout_ms": 5000},
  "ui": {"mode": "tui"}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project overrides */
  "api": {"base_url": "http://localhost:5000", "prefix": "v1/", "with_credentials": false},
  "log": {"level": "DEBUG"}
}`
	if err := os.WriteFile("tasker.config.json", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://localhost:5000" {
		t.Fatalf("base_url=%q", cfg.API.BaseURL)
	}
	if cfg.API.Prefix != "/v1" {
		t.Fatalf("prefix=%q", cfg.API.Prefix)
	}
	if cfg.API.TimeoutMS != 5000 {
		t.Fatalf("timeout_ms=%d", cfg.API.TimeoutMS)
	}
	if cfg.API.WithCredentials {
		t.Fatalf("with_credentials expected false")
	}
	if cfg.UI.Mode != UIModeTUI {
		t.Fatalf("ui.mode=%q", cfg.UI.Mode)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log.level=%q", cfg.Log.Level)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TASKER_BASE_URL", "http://env.example.com")
	t.Setenv("TASKER_API_PREFIX", "")
	t.Setenv("TASKER_TIMEOUT_MS", "250")
	t.Setenv("TASKER_LANG", "zh_CN.UTF-8")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "http://env.example.com" {
		t.Fatalf("base_url=%q", cfg.API.BaseURL)
	}
	if cfg.API.Prefix != "" {
		t.Fatalf("empty env prefix should disable prefix, got %q", cfg.API.Prefix)
	}
	if cfg.API.TimeoutMS != 250 {
		t.Fatalf("timeout_ms=%d", cfg.API.TimeoutMS)
	}
	if cfg.UI.Locale != "zh_CN.UTF-8" {
		t.Fatalf("locale=%q", cfg.UI.Locale)
	}
}

func TestEnvOverrideInvalidTimeout(t *testing.T) {
	isolate(t)
	t.Setenv("TASKER_TIMEOUT_MS", "soon")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid TASKER_TIMEOUT_MS")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "broken.json")
	if err := os.WriteFile(path, []byte(`{"api": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"/":       "",
		"api":     "/api",
		"/api/":   "/api",
		" v1/x/ ": "/v1/x",
	}
	for in, want := range tests {
		if got := NormalizePrefix(in); got != want {
			t.Fatalf("NormalizePrefix(%q)=%q want %q", in, got, want)
		}
	}
}

func TestStripJSONCommentsKeepsStrings(t *testing.T) {
	in := []byte(`{"url": "http://x//y", /* c */ "a": 1 // tail
}`)
	got := string(stripJSONComments(in))
	want := "{\"url\": \"http://x//y\",  \"a\": 1 \n}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriteScaffold(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, ".tasker", "config.json") {
		t.Fatalf("path=%q", path)
	}
	if err := os.WriteFile(path, []byte(`{"api":{"prefix":"/custom"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteScaffold(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"api":{"prefix":"/custom"}}` {
		t.Fatalf("existing config should be preserved, got %s", data)
	}
}
