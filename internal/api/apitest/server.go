// Package apitest runs an in-process task service for tests. It speaks the
// same routes and bodies as the real backend and can be told to answer any
// route with a canned response.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const Prefix = "/api"

var secret = []byte("apitest-secret")

type task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"-"`
	owner       string
}

// Request is one call the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          string
}

type canned struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]string // username -> password
	userIDs  map[string]string // username -> id
	tasks    []*task
	nextUser int
	nextTask int64
	canned   map[string]canned
	requests []Request
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    map[string]string{},
		userIDs:  map[string]string{},
		canned:   map[string]canned{},
		nextUser: 1,
		nextTask: 1,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+Prefix+"/register", s.handleRegister)
	mux.HandleFunc("POST "+Prefix+"/login", s.handleLogin)
	mux.HandleFunc("GET "+Prefix+"/tasks", s.authed(s.handleList))
	mux.HandleFunc("POST "+Prefix+"/tasks", s.authed(s.handleCreate))
	mux.HandleFunc("PUT "+Prefix+"/tasks/{id}", s.authed(s.handleUpdate))
	mux.HandleFunc("DELETE "+Prefix+"/tasks/{id}", s.authed(s.handleDelete))
	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Token signs a token whose sub is userID.
func Token(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	return signed
}

// AddUser registers a user directly and returns its id.
func (s *Server) AddUser(username, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password)
}

func (s *Server) addUserLocked(username, password string) string {
	id := strconv.Itoa(s.nextUser)
	s.nextUser++
	s.users[username] = password
	s.userIDs[username] = id
	return id
}

// AddTask stores a task owned by ownerID and returns its id.
func (s *Server) AddTask(ownerID, title string, done bool, createdAt time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextTask
	s.nextTask++
	s.tasks = append(s.tasks, &task{ID: id, Title: title, Status: done, CreatedAt: createdAt, owner: ownerID})
	return id
}

// Respond makes every later "METHOD /path" call (path without prefix) answer
// with status and body until Reset.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned[method+" "+Prefix+path] = canned{status: status, body: body}
}

func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canned = map[string]canned{}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// TaskCount returns how many tasks the server holds.
func (s *Server) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		c, ok := s.canned[r.Method+" "+r.URL.Path]
		s.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(c.status)
			_, _ = w.Write([]byte(c.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Username]; exists {
		writeError(w, http.StatusBadRequest, "Username already exists")
		return
	}
	s.addUserLocked(in.Username, in.Password)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	password, ok := s.users[in.Username]
	id := s.userIDs[in.Username]
	s.mu.Unlock()
	if !ok || password != in.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": Token(id)})
}

func (s *Server) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			writeError(w, http.StatusUnauthorized, "Unauthorized: Invalid or expired token")
			return
		}
		sub, err := parsed.Claims.GetSubject()
		if err != nil || sub == "" {
			writeError(w, http.StatusUnauthorized, "Invalid user ID")
			return
		}
		next(w, r, sub)
	}
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request, user string) {
	s.mu.Lock()
	out := make([]map[string]any, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.owner != user {
			continue
		}
		out = append(out, map[string]any{
			"id":          t.ID,
			"title":       t.Title,
			"description": t.Description,
			"status":      t.Status,
			"created_at":  t.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000"),
		})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request, user string) {
	var in struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	s.mu.Lock()
	id := s.nextTask
	s.nextTask++
	s.tasks = append(s.tasks, &task{ID: id, Title: in.Title, Description: in.Description, CreatedAt: time.Now(), owner: user})
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Task created", "id": id})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request, user, verb string) (int, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Resource not found")
		return 0, false
	}
	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		if t.owner != user {
			writeError(w, http.StatusForbidden, "Forbidden: You don't have permission to "+verb+" this task")
			return 0, false
		}
		return i, true
	}
	writeError(w, http.StatusNotFound, "Resource not found")
	return 0, false
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, user string) {
	var in struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *bool   `json:"status"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookup(w, r, user, "update")
	if !ok {
		return
	}
	t := s.tasks[i]
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.lookup(w, r, user, "delete")
	if !ok {
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}
