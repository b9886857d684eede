package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasker/internal/api/apitest"
	"tasker/internal/config"
	"tasker/internal/guard"
	"tasker/internal/model"
)

func testConfig(t *testing.T, baseURL string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "data")
	return cfg
}

func TestBuildSuccessWithTempDir(t *testing.T) {
	srv := apitest.New(t)
	cfg := testConfig(t, srv.URL)
	res, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer res.Close()

	if res.Auth == nil || res.Tasks == nil || res.Client == nil || res.Guard == nil {
		t.Fatalf("incomplete result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(cfg.Storage.BaseDir, "tasker.db")); err != nil {
		t.Fatalf("db not created: %v", err)
	}
	if res.Guard.Resolve(guard.PathHome) != guard.PathLogin {
		t.Fatalf("fresh install should be gated")
	}
	data, err := os.ReadFile(filepath.Join(cfg.Storage.BaseDir, "logs", "tasker.log"))
	if err != nil || !strings.Contains(string(data), "tasker started") {
		t.Fatalf("log file missing start line: %v", err)
	}
}

func TestBuildRestoresSessionAcrossRuns(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("alice", "pw")
	cfg := testConfig(t, srv.URL)

	first, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !first.Auth.Login(context.Background(), model.Credentials{Username: "alice", Password: "pw"}) {
		t.Fatalf("Login: %q", first.Auth.Error())
	}
	want, _ := first.Auth.User()
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := Build(cfg)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	defer second.Close()
	got, ok := second.Auth.User()
	if !ok || got != want {
		t.Fatalf("restored user=%+v ok=%v, want %+v", got, ok, want)
	}
	if second.Guard.Resolve(guard.PathHome) != guard.PathHome {
		t.Fatalf("restored session should pass the guard")
	}
}

func TestBuildResetsTasksWhenSessionEnds(t *testing.T) {
	srv := apitest.New(t)
	owner := srv.AddUser("bob", "pw")
	srv.AddTask(owner, "t", false, time.Now())
	res, err := Build(testConfig(t, srv.URL))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer res.Close()

	_ = res.Session.Save(apitest.Token(owner))
	if !res.Tasks.Fetch(context.Background()) || len(res.Tasks.All()) != 1 {
		t.Fatalf("Fetch: %q", res.Tasks.Error())
	}
	res.Session.Expire()
	if len(res.Tasks.All()) != 0 {
		t.Fatalf("tasks survived session expiry")
	}
	if res.Session.Present() {
		t.Fatalf("session still present")
	}
}

func TestNewLoggerStderrAndLevel(t *testing.T) {
	logger, closer, err := newLogger(config.LogConfig{Level: "debug", File: "-"}, t.TempDir())
	if err != nil || closer != nil || logger == nil {
		t.Fatalf("stderr logger: closer=%v err=%v", closer, err)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("debug level not enabled")
	}
	if parseLevel("bogus").String() != "INFO" {
		t.Fatalf("unknown level should be info")
	}
}
