package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"tasker/internal/i18n"
	"tasker/internal/model"
)

const timeLayout = "2006-01-02 15:04"

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// TaskMarkdown 任务详情的 markdown 源文本；描述按 markdown 原样嵌入
// TaskMarkdown builds the markdown shown in the detail view; the description is embedded as markdown
func TaskMarkdown(task model.Task, locale *i18n.I18n) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", task.Title)
	status := locale.T("task.open")
	if task.Status {
		status = locale.T("task.done")
	}
	fmt.Fprintf(&b, "`#%d` · **%s** · %s\n\n", task.ID, status, locale.T("task.created", task.CreatedAt.Local().Format(timeLayout)))
	if desc := strings.TrimSpace(task.Description); desc != "" {
		b.WriteString("---\n\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTaskRow 渲染列表中的一行，标题按显示宽度截断
// RenderTaskRow renders one list row, truncating the title by display width
func RenderTaskRow(task model.Task, selected bool, width int, theme Theme) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	mark := "[ ]"
	style := theme.OpenStyle
	if task.Status {
		mark = "[x]"
		style = theme.DoneStyle
	}
	created := task.CreatedAt.Local().Format(timeLayout)
	id := fmt.Sprintf("#%-4d", task.ID)

	fixed := runewidth.StringWidth(cursor+mark+" "+id+" ") + runewidth.StringWidth(created) + 2
	titleWidth := width - fixed
	if titleWidth < 8 {
		titleWidth = 8
	}
	title := runewidth.Truncate(task.Title, titleWidth, "…")
	title = runewidth.FillRight(title, titleWidth)

	row := cursor + mark + " " + theme.MutedStyle.Render(id) + " " + style.Render(title) + "  " + theme.MutedStyle.Render(created)
	if selected {
		return theme.SelectedStyle.Render(row)
	}
	return row
}
