package model

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Task 任务条目（规范化后的内存形态）
// Task is a task entry in its canonical, fully-populated form
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskInput 创建任务时提交的字段
// TaskInput carries the fields submitted when creating a task
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskUpdate 部分更新；nil 字段保持不变
// TaskUpdate is a partial update; nil fields are left untouched
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *bool   `json:"status,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil
}

// Apply returns t with every non-nil field of u merged in.
func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	return t
}

// User 当前用户身份，仅由 token 的 sub 推导
// User is the current identity, derived only from the token's sub claim
type User struct {
	ID string `json:"id"`
}

// Credentials 注册与登录共用的凭据
// Credentials are shared by register and login
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LogValue keeps the password out of request logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.String("password", "******"),
	)
}

// Filter 任务列表过滤条件
// Filter selects which tasks the derived view shows
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Sort 任务列表排序方式
// Sort orders the derived view by creation time
type Sort string

const (
	SortNewest Sort = "newest"
	SortOldest Sort = "oldest"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortNewest, SortOldest:
		return v, nil
	default:
		return "", fmt.Errorf("unknown sort %q (want newest or oldest)", s)
	}
}

// Next cycles all -> active -> completed -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterActive
	case FilterActive:
		return FilterCompleted
	default:
		return FilterAll
	}
}

// Toggle flips newest and oldest.
func (s Sort) Toggle() Sort {
	if s == SortOldest {
		return SortNewest
	}
	return SortOldest
}
