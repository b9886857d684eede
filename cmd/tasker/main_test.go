package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasker/internal/config"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{"-tui", "-lang", "zh-CN", "-config", "/tmp/c.json"}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if !opts.tui || opts.lang != "zh-CN" || opts.configPath != "/tmp/c.json" {
		t.Fatalf("opts=%+v", opts)
	}

	if _, err := parseFlags([]string{"extra"}, &stderr); err == nil {
		t.Fatal("expected error for positional args")
	}
	if _, err := parseFlags([]string{"-nope"}, &stderr); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := config.Default()
	got := applyOptions(cfg, options{tui: true, lang: "en", baseURL: "http://example.com/"})
	if got.UI.Mode != config.UIModeTUI || got.UI.Locale != "en" || got.API.BaseURL != "http://example.com" {
		t.Fatalf("cfg=%+v", got)
	}

	// empty options leave config alone
	if again := applyOptions(cfg, options{}); again.UI.Mode != cfg.UI.Mode || again.API.BaseURL != cfg.API.BaseURL {
		t.Fatalf("cfg changed: %+v", again)
	}
}

func TestRunInitWritesScaffold(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-init", dir}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit=%d stderr=%s", code, stderr.String())
	}
	want := filepath.Join(dir, ".tasker", "config.json")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("scaffold missing: %v", err)
	}
	if !strings.Contains(stdout.String(), want) {
		t.Fatalf("stdout=%q", stdout.String())
	}
}

func TestRunBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TASKER_CONFIG_PATH", "")
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", path}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit=%d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "load config failed") {
		t.Fatalf("stderr=%q", stderr.String())
	}
}
