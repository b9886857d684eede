package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"tasker/internal/bootstrap"
	"tasker/internal/i18n"
)

const historyFile = "repl.history"

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 80

// Loop holds REPL state: the wired stores, the input source and the output.
// Loop 持有 REPL 状态：已装配的 stores、输入源与输出。
type Loop struct {
	*bootstrap.BuildResult

	in     lineInput
	out    io.Writer
	locale *i18n.I18n
	color  bool
	width  func() int
	secret func(prompt string) (string, error)

	// authenticating 为真时，登录失败导致的会话过期不再提示
	authenticating bool

	styles styles
}

type styles struct {
	prompt  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	header  lipgloss.Style
	done    lipgloss.Style
}

func newStyles() styles {
	return styles{
		prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		header:  lipgloss.NewStyle().Bold(true).Underline(true),
		done:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
	}
}

// NewLoop builds a REPL loop from a BuildResult reading from in and writing to out.
func NewLoop(res *bootstrap.BuildResult, in lineInput, out io.Writer) *Loop {
	l := &Loop{
		BuildResult: res,
		in:          in,
		out:         out,
		locale:      i18n.Global(),
		color:       useColor(),
		width:       terminalWidth,
		styles:      newStyles(),
	}
	l.secret = func(prompt string) (string, error) { return readSecret(l.in, l.out, prompt) }
	return l
}

// Run 使用带历史记录的行编辑器在 stdin/stdout 上运行 REPL
// Run runs the REPL on stdin/stdout with a history-backed line editor
func Run(ctx context.Context, res *bootstrap.BuildResult) error {
	in, err := newLineInput(filepath.Join(res.Config.Storage.BaseDir, historyFile))
	if err != nil {
		res.Logger.Warn("line editor unavailable, fallback to basic input", "err", err)
	}
	defer in.Close()
	return NewLoop(res, in, os.Stdout).Run(ctx)
}

// Run reads commands until /exit or end of input.
func (l *Loop) Run(ctx context.Context) error {
	cancel := l.Guard.OnRedirect(func(string) {
		if !l.authenticating {
			l.fail(l.locale.T("msg.session_expired"))
		}
	})
	defer cancel()

	l.printBanner(ctx)
	for {
		line, err := l.in.ReadLine(l.prompt())
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(l.out)
				continue
			case errors.Is(err, io.EOF):
				return nil
			default:
				return fmt.Errorf("read input: %w", err)
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if exit := l.handle(ctx, input); exit {
			return nil
		}
	}
}

func (l *Loop) printBanner(ctx context.Context) {
	fmt.Fprintln(l.out, l.paint(l.styles.header, l.locale.T("app.title")))
	if user, ok := l.Auth.User(); ok && l.Auth.Authenticated() {
		l.info(l.locale.T("status.user", user.ID))
		l.refresh(ctx)
	} else {
		l.info(l.locale.T("status.anonymous"))
	}
	l.info(l.locale.T("msg.help_hint"))
}

// prompt: "[user 7] tasker> " when signed in, "tasker> " otherwise.
func (l *Loop) prompt() string {
	p := "tasker> "
	if user, ok := l.Auth.User(); ok && l.Auth.Authenticated() {
		p = fmt.Sprintf("[%s] %s", l.locale.T("msg.whoami", user.ID), p)
	}
	return l.paint(l.styles.prompt, p)
}

func (l *Loop) paint(style lipgloss.Style, s string) string {
	if !l.color {
		return s
	}
	return style.Render(s)
}

func (l *Loop) info(msg string) {
	fmt.Fprintln(l.out, l.paint(l.styles.muted, msg))
}

func (l *Loop) success(msg string) {
	fmt.Fprintln(l.out, l.paint(l.styles.success, msg))
}

func (l *Loop) fail(msg string) {
	fmt.Fprintln(l.out, l.paint(l.styles.failure, msg))
}

func (l *Loop) termWidth() int {
	if l.width != nil {
		if w := l.width(); w > 0 {
			return w
		}
	}
	return defaultWidth
}

func useColor() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("TASKER_NO_COLOR")) != "" {
		return false
	}
	return strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) != "dumb"
}
