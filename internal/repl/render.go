package repl

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"tasker/internal/model"
	"tasker/internal/tui"
)

const (
	timeLayout    = "2006-01-02 15:04"
	minTitleWidth = 10
	columnGap     = "  "
)

// printTasks 打印当前过滤与排序下的任务表
// printTasks prints the task table for the current filter and sort
func (l *Loop) printTasks() {
	visible := l.Tasks.Visible()
	c := l.Tasks.Counts()
	summary := fmt.Sprintf("%s · %s · %s",
		l.locale.T("filter."+string(l.Tasks.Filter())),
		l.locale.T("sort."+string(l.Tasks.Sort())),
		l.locale.T("status.counts", c.Total, c.Active, c.Completed))
	l.info(summary)
	if len(visible) == 0 {
		l.info(l.locale.T("tasks.empty"))
		return
	}
	for _, line := range l.taskTable(visible, l.termWidth()) {
		fmt.Fprintln(l.out, line)
	}
}

// taskTable lays out tasks in aligned columns no wider than width; the title
// column takes whatever the others leave and is truncated by display width.
func (l *Loop) taskTable(list []model.Task, width int) []string {
	header := strings.Split(l.locale.T("tasks.header"), "|")
	for len(header) < 4 {
		header = append(header, "")
	}
	done, open := l.locale.T("task.done"), l.locale.T("task.open")

	idWidth := runewidth.StringWidth(header[0])
	for _, t := range list {
		if w := runewidth.StringWidth(fmt.Sprintf("#%d", t.ID)); w > idWidth {
			idWidth = w
		}
	}
	statusWidth := max(runewidth.StringWidth(header[1]), runewidth.StringWidth(done), runewidth.StringWidth(open))
	createdWidth := max(runewidth.StringWidth(header[3]), len(timeLayout))
	titleWidth := width - idWidth - statusWidth - createdWidth - 3*len(columnGap)
	if titleWidth < minTitleWidth {
		titleWidth = minTitleWidth
	}

	row := func(id, status, title, created string) string {
		return strings.Join([]string{
			runewidth.FillRight(id, idWidth),
			runewidth.FillRight(status, statusWidth),
			runewidth.FillRight(runewidth.Truncate(title, titleWidth, "…"), titleWidth),
			runewidth.FillRight(created, createdWidth),
		}, columnGap)
	}

	lines := make([]string, 0, len(list)+1)
	lines = append(lines, l.paint(l.styles.header, row(header[0], header[1], header[2], header[3])))
	for _, t := range list {
		status := open
		if t.Status {
			status = done
		}
		line := row(fmt.Sprintf("#%d", t.ID), status, t.Title, t.CreatedAt.Local().Format(timeLayout))
		if t.Status {
			line = l.paint(l.styles.done, line)
		}
		lines = append(lines, line)
	}
	return lines
}

func (l *Loop) printTask(task model.Task) {
	md := tui.TaskMarkdown(task, l.locale)
	if l.color {
		fmt.Fprint(l.out, tui.RenderMarkdown(md, l.termWidth()))
		return
	}
	fmt.Fprint(l.out, md)
}
