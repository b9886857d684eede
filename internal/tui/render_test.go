package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tasker/internal/i18n"
	"tasker/internal/model"
)

func TestRenderMarkdown_Basic(t *testing.T) {
	input := "# Hello\n\nThis is **bold** text."
	result := RenderMarkdown(input, 80)
	if result == "" {
		t.Fatal("RenderMarkdown returned empty")
	}
	// Glamour 应该渲染了标题 / Glamour should have rendered the heading
	if !strings.Contains(result, "Hello") {
		t.Fatalf("result should contain 'Hello': %q", result)
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	if RenderMarkdown("", 80) != "" {
		t.Fatal("empty input should return empty")
	}
	if RenderMarkdown("  ", 80) != "" {
		t.Fatal("whitespace input should return empty")
	}
}

func TestTaskMarkdown(t *testing.T) {
	locale := i18n.New("en")
	task := model.Task{ID: 3, Title: "Ship it", Description: "- step one\n- step two", Status: true, CreatedAt: time.Now()}
	md := TaskMarkdown(task, locale)
	for _, want := range []string{"# Ship it", "#3", "done", "step two"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q: %q", want, md)
		}
	}

	bare := TaskMarkdown(model.Task{ID: 4, Title: "Bare"}, locale)
	if strings.Contains(bare, "---") || !strings.Contains(bare, "open") {
		t.Fatalf("task without description: %q", bare)
	}
}

func TestRenderTaskRow(t *testing.T) {
	theme := DefaultTheme()
	long := model.Task{ID: 12, Title: strings.Repeat("很长的标题", 20), CreatedAt: time.Now()}
	row := RenderTaskRow(long, false, 60, theme)
	if !strings.Contains(row, "#12") || !strings.Contains(row, "[ ]") {
		t.Fatalf("row missing id or mark: %q", row)
	}
	if !strings.Contains(row, "…") {
		t.Fatalf("long title should be truncated: %q", row)
	}

	done := RenderTaskRow(model.Task{ID: 1, Title: "short", Status: true}, true, 60, theme)
	if !strings.Contains(done, "[x]") || !strings.Contains(done, "▸") {
		t.Fatalf("selected done row: %q", done)
	}
	if w := lipgloss.Width(row); w > 60 {
		t.Fatalf("row width %d exceeds 60", w)
	}
}
