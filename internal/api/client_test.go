package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasker/internal/api/apitest"
	"tasker/internal/model"
	"tasker/internal/session"
	"tasker/internal/storage"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, srv *apitest.Server) (*Client, *session.Context) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "tasker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.New(store, logger)
	client, err := New(Options{
		BaseURL: srv.URL,
		Prefix:  apitest.Prefix,
		Logger:  logger,
		Now:     func() time.Time { return fixedNow },
	}, sess)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client, sess
}

func TestResolvePath(t *testing.T) {
	c := &Client{prefix: "/api"}
	cases := map[string]string{
		"/tasks":       "/api/tasks",
		"tasks":        "/api/tasks",
		"/api/tasks":   "/api/tasks",
		"/api":         "/api",
		"/apiary":      "/api/apiary",
		"/tasks/3":     "/api/tasks/3",
		"/api/tasks/3": "/api/tasks/3",
	}
	for in, want := range cases {
		if got := c.ResolvePath(in); got != want {
			t.Fatalf("ResolvePath(%q)=%q, want %q", in, got, want)
		}
	}
	bare := &Client{}
	if got := bare.ResolvePath("/tasks"); got != "/tasks" {
		t.Fatalf("empty prefix ResolvePath=%q", got)
	}
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	sess := session.New(nil, nil)
	if _, err := New(Options{BaseURL: "ftp://example.com"}, sess); err == nil {
		t.Fatalf("expected error for non-http base url")
	}
	if _, err := New(Options{BaseURL: "http://example.com"}, nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
}

func TestClient_LoginAndBearer(t *testing.T) {
	srv := apitest.New(t)
	userID := srv.AddUser("alice", "pw")
	client, sess := newTestClient(t, srv)
	ctx := context.Background()

	token, err := client.Login(ctx, model.Credentials{Username: "alice", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if err := sess.Save(token); err != nil {
		t.Fatalf("Save: %v", err)
	}
	srv.AddTask(userID, "first", false, fixedNow.Add(-time.Hour))

	tasks, err := client.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "first" {
		t.Fatalf("tasks=%+v", tasks)
	}
	if !tasks[0].CreatedAt.Equal(fixedNow.Add(-time.Hour)) {
		t.Fatalf("CreatedAt=%v", tasks[0].CreatedAt)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests=%d, want 2", len(reqs))
	}
	if reqs[0].Path != "/api/login" || reqs[0].Authorization != "" {
		t.Fatalf("login request unexpected: %+v", reqs[0])
	}
	if reqs[1].Authorization != "Bearer "+token {
		t.Fatalf("Authorization=%q", reqs[1].Authorization)
	}
	if reqs[1].RequestID == "" || reqs[1].RequestID == reqs[0].RequestID {
		t.Fatalf("request ids not unique: %q %q", reqs[0].RequestID, reqs[1].RequestID)
	}
}

func TestClient_CRUD(t *testing.T) {
	srv := apitest.New(t)
	userID := srv.AddUser("bob", "pw")
	client, sess := newTestClient(t, srv)
	_ = sess.Save(apitest.Token(userID))
	ctx := context.Background()

	id, err := client.CreateTask(ctx, model.TaskInput{Title: "write tests"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	done := true
	if err := client.UpdateTask(ctx, id, model.TaskUpdate{Status: &done}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	tasks, err := client.ListTasks(ctx)
	if err != nil || len(tasks) != 1 || !tasks[0].Status {
		t.Fatalf("ListTasks=%+v err=%v", tasks, err)
	}
	if err := client.DeleteTask(ctx, id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if srv.TaskCount() != 0 {
		t.Fatalf("server still holds %d tasks", srv.TaskCount())
	}

	reqs := srv.Requests()
	if got := reqs[1]; got.Method != http.MethodPut || got.Path != "/api/tasks/1" || !strings.Contains(got.Body, `"status":true`) {
		t.Fatalf("update request unexpected: %+v", got)
	}
	if strings.Contains(reqs[1].Body, "title") {
		t.Fatalf("partial update sent unset field: %s", reqs[1].Body)
	}
}

func TestClient_UnauthenticatedExpiresSession(t *testing.T) {
	srv := apitest.New(t)
	client, sess := newTestClient(t, srv)
	_ = sess.Save("stale.token.value")

	var events []session.Event
	sess.Subscribe(func(ev session.Event) { events = append(events, ev) })

	_, err := client.ListTasks(context.Background())
	if !IsUnauthenticated(err) {
		t.Fatalf("err=%v, want unauthenticated", err)
	}
	if sess.Present() {
		t.Fatalf("session should be cleared")
	}
	if len(events) != 1 || events[0].Kind != session.EventExpired || events[0].Redirect != session.LoginPath {
		t.Fatalf("events=%+v", events)
	}
}

func TestClient_ForbiddenKeepsSession(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"403", http.StatusForbidden, `{"error":"Forbidden: You don't have permission to delete this task"}`},
		{"401 with marker", http.StatusUnauthorized, `{"error":"Forbidden: not yours"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := apitest.New(t)
			client, sess := newTestClient(t, srv)
			_ = sess.Save(apitest.Token("1"))
			srv.Respond(http.MethodDelete, "/tasks/9", tc.status, tc.body)

			err := client.DeleteTask(context.Background(), 9)
			if !IsForbidden(err) {
				t.Fatalf("err=%v, want forbidden", err)
			}
			if !sess.Present() {
				t.Fatalf("forbidden must not clear the session")
			}
			if !strings.HasPrefix(MessageOf(err), "Forbidden") {
				t.Fatalf("MessageOf=%q", MessageOf(err))
			}
		})
	}
}

func TestClient_RejectedCarriesServerMessage(t *testing.T) {
	srv := apitest.New(t)
	srv.AddUser("carol", "pw")
	client, _ := newTestClient(t, srv)

	err := client.Register(context.Background(), model.Credentials{Username: "carol", Password: "pw"})
	if CategoryOf(err) != CategoryRejected {
		t.Fatalf("category=%q err=%v", CategoryOf(err), err)
	}
	if got := MessageOr(err, "Registration failed"); got != "Username already exists" {
		t.Fatalf("MessageOr=%q", got)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || apiErr.Path != "/api/register" {
		t.Fatalf("unexpected error: %#v", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := apitest.New(t)
	client, _ := newTestClient(t, srv)
	srv.Close()

	err := client.Register(context.Background(), model.Credentials{Username: "x", Password: "y"})
	if CategoryOf(err) != CategoryTransport {
		t.Fatalf("category=%q err=%v", CategoryOf(err), err)
	}
	if got := MessageOr(err, "Registration failed"); got != "Registration failed" {
		t.Fatalf("MessageOr=%q", got)
	}
}

func TestClient_DecodeFailures(t *testing.T) {
	srv := apitest.New(t)
	client, sess := newTestClient(t, srv)
	_ = sess.Save(apitest.Token("1"))
	ctx := context.Background()

	srv.Respond(http.MethodPost, "/login", http.StatusOK, `{"message":"ok"}`)
	if _, err := client.Login(ctx, model.Credentials{Username: "a", Password: "b"}); CategoryOf(err) != CategoryDecode {
		t.Fatalf("login without token: %v", err)
	}
	srv.Respond(http.MethodPost, "/tasks", http.StatusCreated, `{"message":"Task created"}`)
	if _, err := client.CreateTask(ctx, model.TaskInput{Title: "x"}); CategoryOf(err) != CategoryDecode {
		t.Fatalf("create without id: %v", err)
	}
	srv.Respond(http.MethodGet, "/tasks", http.StatusOK, `{"not":"a list"}`)
	if _, err := client.ListTasks(ctx); CategoryOf(err) != CategoryDecode {
		t.Fatalf("list with object body: %v", err)
	}
}

func TestClient_ListTasksNormalizes(t *testing.T) {
	srv := apitest.New(t)
	client, sess := newTestClient(t, srv)
	_ = sess.Save(apitest.Token("1"))
	srv.Respond(http.MethodGet, "/tasks", http.StatusOK, `[
		{"id": 1, "title": "zoned", "description": null, "status": true, "created_at": "2024-05-01T10:00:00+02:00"},
		{"id": 2, "title": "naive", "created_at": "2024-05-01T10:00:00.123456"},
		{"id": 3, "title": "no time", "description": "d", "status": false, "created_at": null},
		{"title": "no id"},
		{"id": 4, "title": "garbage time", "created_at": "yesterday"}
	]`)

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 4 {
		t.Fatalf("len=%d, want 4 (record without id dropped)", len(tasks))
	}
	if tasks[0].Description != "" || !tasks[0].Status {
		t.Fatalf("task 1=%+v", tasks[0])
	}
	if want := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC); !tasks[0].CreatedAt.Equal(want) {
		t.Fatalf("zoned CreatedAt=%v", tasks[0].CreatedAt)
	}
	if want := time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC); !tasks[1].CreatedAt.Equal(want) {
		t.Fatalf("naive CreatedAt=%v", tasks[1].CreatedAt)
	}
	if tasks[1].Status {
		t.Fatalf("missing status should default to false")
	}
	if !tasks[2].CreatedAt.Equal(fixedNow) || tasks[2].Description != "d" {
		t.Fatalf("task 3=%+v", tasks[2])
	}
	if !tasks[3].CreatedAt.Equal(fixedNow) {
		t.Fatalf("unparseable timestamp should become now, got %v", tasks[3].CreatedAt)
	}
}

func TestErrorMessage(t *testing.T) {
	cases := map[string]string{
		`{"error":" Title is required "}`: "Title is required",
		`{"message":"gone"}`:              "gone",
		`{"error":{"code":1}}`:            `{"code":1}`,
		`<html>bad gateway</html>`:        "",
		``:                                "",
	}
	for body, want := range cases {
		if got := errorMessage([]byte(body)); got != want {
			t.Fatalf("errorMessage(%q)=%q, want %q", body, got, want)
		}
	}
}
