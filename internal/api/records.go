package api

import (
	"log/slog"
	"strings"
	"time"

	"tasker/internal/model"
)

// taskRecord is a task as the server sends it; every field may be absent.
type taskRecord struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *bool   `json:"status"`
	CreatedAt   *string `json:"created_at"`
}

// 服务端时间戳可能不带时区，按 UTC 处理
// Server timestamps may carry no zone; those are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// normalizeTasks turns wire records into canonical tasks. Records without an
// id are dropped; missing fields get their defaults and a missing or
// unreadable timestamp becomes now.
func normalizeTasks(records []taskRecord, now time.Time, logger *slog.Logger) []model.Task {
	out := make([]model.Task, 0, len(records))
	for i, rec := range records {
		if rec.ID == nil {
			logger.Warn("drop task record without id", "index", i)
			continue
		}
		task := model.Task{ID: *rec.ID, CreatedAt: now}
		if rec.Title != nil {
			task.Title = *rec.Title
		}
		if rec.Description != nil {
			task.Description = *rec.Description
		}
		if rec.Status != nil {
			task.Status = *rec.Status
		}
		if rec.CreatedAt != nil {
			if ts, ok := parseTimestamp(*rec.CreatedAt); ok {
				task.CreatedAt = ts
			} else {
				logger.Warn("unreadable task timestamp", "id", task.ID, "created_at", *rec.CreatedAt)
			}
		}
		out = append(out, task)
	}
	return out
}
