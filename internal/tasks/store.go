// Package tasks keeps the user's task list, the filter and sort preferences,
// and the derived view the surfaces render.
//
// Actions do not exclude each other. Each one applies its result when its own
// response arrives, so two racing actions resolve last-arrival-wins.
package tasks

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"tasker/internal/api"
	"tasker/internal/model"
)

const (
	msgFetchFailed     = "Failed to fetch tasks"
	msgAddFailed       = "Failed to add task"
	msgUpdateFailed    = "Failed to update task"
	msgDeleteFailed    = "Failed to delete task"
	msgUpdateForbidden = "You don't have permission to update this task"
	msgDeleteForbidden = "You don't have permission to delete this task"
)

// Client is the part of api.Client the task store calls.
type Client interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.TaskInput) (int64, error)
	UpdateTask(ctx context.Context, id int64, task model.TaskUpdate) error
	DeleteTask(ctx context.Context, id int64) error
}

// Counts 各状态的任务数
// Counts summarizes the collection by status
type Counts struct {
	Total     int
	Active    int
	Completed int
}

type Store struct {
	client Client
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	tasks  []model.Task
	filter model.Filter
	sort   model.Sort
	err    string
}

type Option func(*Store)

// WithClock overrides the clock used to stamp added tasks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(client Client, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		client: client,
		logger: logger,
		now:    time.Now,
		filter: model.FilterAll,
		sort:   model.SortNewest,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch replaces the collection with the server's list. On failure the
// previous collection is kept.
func (s *Store) Fetch(ctx context.Context) bool {
	list, err := s.client.ListTasks(ctx)
	if err != nil {
		s.logger.Warn("fetch tasks", "err", err)
		s.setError(msgFetchFailed)
		return false
	}
	s.mu.Lock()
	s.tasks = list
	s.mu.Unlock()
	s.logger.Debug("tasks loaded", "count", len(list))
	return true
}

// Add creates a task and appends it locally without re-fetching.
func (s *Store) Add(ctx context.Context, input model.TaskInput) (model.Task, bool) {
	id, err := s.client.CreateTask(ctx, input)
	if err != nil {
		s.setError(api.MessageOr(err, msgAddFailed))
		return model.Task{}, false
	}
	task := model.Task{
		ID:          id,
		Title:       input.Title,
		Description: input.Description,
		Status:      false,
		CreatedAt:   s.now(),
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.err = ""
	s.mu.Unlock()
	return task, true
}

// Update merges the non-nil fields of updates into the local entry. A missing
// local entry is not an error.
func (s *Store) Update(ctx context.Context, id int64, updates model.TaskUpdate) bool {
	if err := s.client.UpdateTask(ctx, id, updates); err != nil {
		s.setError(failureMessage(err, msgUpdateForbidden, msgUpdateFailed))
		return false
	}
	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.tasks[i] = updates.Apply(s.tasks[i])
	}
	s.err = ""
	s.mu.Unlock()
	return true
}

// Toggle flips the status of a known task.
func (s *Store) Toggle(ctx context.Context, id int64) bool {
	task, ok := s.Get(id)
	if !ok {
		return false
	}
	status := !task.Status
	return s.Update(ctx, id, model.TaskUpdate{Status: &status})
}

func (s *Store) Delete(ctx context.Context, id int64) bool {
	if err := s.client.DeleteTask(ctx, id); err != nil {
		s.setError(failureMessage(err, msgDeleteForbidden, msgDeleteFailed))
		return false
	}
	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.err = ""
	s.mu.Unlock()
	return true
}

func failureMessage(err error, forbidden, fallback string) string {
	if api.IsForbidden(err) {
		return forbidden
	}
	return api.MessageOr(err, fallback)
}

func (s *Store) SetFilter(f model.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *Store) SetSort(order model.Sort) {
	s.mu.Lock()
	s.sort = order
	s.mu.Unlock()
}

func (s *Store) Filter() model.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Store) Sort() model.Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

// Visible 按当前过滤与排序计算的视图，每次读取时重新计算
// Visible is the filtered and sorted view, recomputed on every call.
func (s *Store) Visible() []model.Task {
	s.mu.Lock()
	filter, order := s.filter, s.sort
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		switch filter {
		case model.FilterCompleted:
			if !t.Status {
				continue
			}
		case model.FilterActive:
			if t.Status {
				continue
			}
		}
		out = append(out, t)
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if order == model.SortOldest {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// All returns the collection in storage order.
func (s *Store) All() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) Get(id int64) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Counts{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Status {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}

// Error returns the last failure message, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ClearError dismisses the last failure message.
func (s *Store) ClearError() {
	s.setError("")
}

// Reset empties the collection, used when the session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) indexLocked(id int64) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}
