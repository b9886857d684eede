package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"tasker/internal/guard"
	"tasker/internal/model"
)

type command struct {
	name string
	args string
	help string // i18n key
	auth bool   // requires a session
}

var commands = []command{
	{name: "/register", args: "[username]", help: "cmd.register"},
	{name: "/login", args: "[username]", help: "cmd.login"},
	{name: "/logout", help: "cmd.logout"},
	{name: "/whoami", help: "cmd.whoami"},
	{name: "/tasks", help: "cmd.tasks", auth: true},
	{name: "/show", args: "<id>", help: "cmd.show", auth: true},
	{name: "/add", args: "<title>", help: "cmd.add", auth: true},
	{name: "/done", args: "<id>", help: "cmd.done", auth: true},
	{name: "/undo", args: "<id>", help: "cmd.undo", auth: true},
	{name: "/edit", args: "<id> <title>", help: "cmd.edit", auth: true},
	{name: "/rm", args: "<id>", help: "cmd.rm", auth: true},
	{name: "/filter", args: "<all|active|completed>", help: "cmd.filter", auth: true},
	{name: "/sort", args: "<newest|oldest>", help: "cmd.sort", auth: true},
	{name: "/refresh", help: "cmd.refresh", auth: true},
	{name: "/help", help: "cmd.help"},
	{name: "/exit", help: "cmd.exit"},
}

var commandAliases = map[string]string{
	"/quit": "/exit",
	"/ls":   "/tasks",
	"/?":    "/help",
}

func lookupCommand(name string) (command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	name = strings.ToLower(name)
	if alias, ok := commandAliases[name]; ok {
		name = alias
	}
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (c command) usage() string {
	if c.args == "" {
		return c.name
	}
	return c.name + " " + c.args
}

// handle 执行一行输入，返回 true 表示退出
// handle runs one input line and reports whether the loop should exit
func (l *Loop) handle(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}
	cmd, ok := lookupCommand(parts[0])
	if !ok {
		l.fail(l.locale.T("error.unknown_command", parts[0]))
		return false
	}
	if cmd.auth && l.Guard.Resolve(guard.PathHome) != guard.PathHome {
		l.fail(l.locale.T("msg.login_required"))
		return false
	}
	args := parts[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch cmd.name {
	case "/exit":
		return true
	case "/help":
		l.printHelp()
	case "/register":
		l.authenticate(ctx, args, true)
	case "/login":
		l.authenticate(ctx, args, false)
	case "/logout":
		l.Auth.Logout()
		l.success(l.locale.T("msg.logout"))
	case "/whoami":
		if user, ok := l.Auth.User(); ok && l.Auth.Authenticated() {
			l.info(l.locale.T("msg.whoami", user.ID))
		} else {
			l.info(l.locale.T("status.anonymous"))
		}
	case "/tasks":
		l.printTasks()
	case "/refresh":
		l.refresh(ctx)
	case "/show":
		id, ok := l.parseID(cmd, args)
		if !ok {
			return false
		}
		task, found := l.Tasks.Get(id)
		if !found {
			l.fail(l.locale.T("error.not_found", id))
			return false
		}
		l.printTask(task)
	case "/add":
		l.add(ctx, rest)
	case "/done", "/undo":
		id, ok := l.parseID(cmd, args)
		if !ok {
			return false
		}
		status := cmd.name == "/done"
		l.taskResult(l.Tasks.Update(ctx, id, model.TaskUpdate{Status: &status}), l.locale.T("msg.updated", id))
	case "/edit":
		l.edit(ctx, cmd, args)
	case "/rm":
		l.remove(ctx, cmd, args)
	case "/filter":
		if len(args) != 1 {
			l.fail(l.locale.T("error.usage", cmd.usage()))
			return false
		}
		f, err := model.ParseFilter(args[0])
		if err != nil {
			l.fail(err.Error())
			return false
		}
		l.Tasks.SetFilter(f)
		l.success(l.locale.T("msg.filter", l.locale.T("filter."+string(f))))
		l.printTasks()
	case "/sort":
		if len(args) != 1 {
			l.fail(l.locale.T("error.usage", cmd.usage()))
			return false
		}
		order, err := model.ParseSort(args[0])
		if err != nil {
			l.fail(err.Error())
			return false
		}
		l.Tasks.SetSort(order)
		l.success(l.locale.T("msg.sort", l.locale.T("sort."+string(order))))
		l.printTasks()
	}
	return false
}

func (l *Loop) printHelp() {
	width := 0
	for _, c := range commands {
		if w := runewidth.StringWidth(c.usage()); w > width {
			width = w
		}
	}
	for _, c := range commands {
		fmt.Fprintf(l.out, "  %s  %s\n", runewidth.FillRight(c.usage(), width), l.locale.T(c.help))
	}
}

func (l *Loop) authenticate(ctx context.Context, args []string, register bool) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		line, err := l.in.ReadLine(l.locale.T("prompt.username"))
		if err != nil {
			l.fail(l.locale.T("error.input", err))
			return
		}
		username = strings.TrimSpace(line)
	}
	password, err := l.secret(l.locale.T("prompt.password"))
	if err != nil {
		l.fail(l.locale.T("error.input", err))
		return
	}
	creds := model.Credentials{Username: username, Password: password}

	l.authenticating = true
	defer func() { l.authenticating = false }()
	if register {
		if !l.Auth.Register(ctx, creds) {
			l.fail(l.Auth.Error())
			return
		}
		l.success(l.locale.T("msg.register_ok"))
		return
	}
	if !l.Auth.Login(ctx, creds) {
		l.fail(l.Auth.Error())
		return
	}
	user, _ := l.Auth.User()
	l.success(l.locale.T("msg.login_ok", user.ID))
	l.refresh(ctx)
}

func (l *Loop) refresh(ctx context.Context) {
	if !l.Tasks.Fetch(ctx) {
		l.taskFailed()
		return
	}
	l.info(l.locale.T("msg.fetched", len(l.Tasks.All())))
}

func (l *Loop) add(ctx context.Context, title string) {
	if title == "" {
		l.fail(l.locale.T("error.title_required"))
		return
	}
	description, err := l.in.ReadLine(l.locale.T("prompt.description"))
	if err != nil {
		l.fail(l.locale.T("error.input", err))
		return
	}
	task, ok := l.Tasks.Add(ctx, model.TaskInput{Title: title, Description: strings.TrimSpace(description)})
	l.taskResult(ok, l.locale.T("msg.added", task.ID))
}

func (l *Loop) edit(ctx context.Context, cmd command, args []string) {
	if len(args) < 2 {
		l.fail(l.locale.T("error.usage", cmd.usage()))
		return
	}
	id, ok := l.parseID(cmd, args)
	if !ok {
		return
	}
	title := strings.Join(args[1:], " ")
	update := model.TaskUpdate{Title: &title}
	// 空输入保留原描述 / Empty input keeps the current description
	description, err := l.in.ReadLine(l.locale.T("prompt.description"))
	if err != nil {
		l.fail(l.locale.T("error.input", err))
		return
	}
	if d := strings.TrimSpace(description); d != "" {
		update.Description = &d
	}
	l.taskResult(l.Tasks.Update(ctx, id, update), l.locale.T("msg.updated", id))
}

func (l *Loop) remove(ctx context.Context, cmd command, args []string) {
	id, ok := l.parseID(cmd, args)
	if !ok {
		return
	}
	answer, err := l.in.ReadLine(l.locale.T("prompt.confirm_delete", id))
	if err != nil {
		l.fail(l.locale.T("error.input", err))
		return
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
	default:
		return
	}
	l.taskResult(l.Tasks.Delete(ctx, id), l.locale.T("msg.deleted", id))
}

func (l *Loop) parseID(cmd command, args []string) (int64, bool) {
	if len(args) == 0 {
		l.fail(l.locale.T("error.usage", cmd.usage()))
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		l.fail(l.locale.T("error.bad_id", args[0]))
		return 0, false
	}
	return id, true
}

func (l *Loop) taskResult(ok bool, notice string) {
	if !ok {
		l.taskFailed()
		return
	}
	l.success(notice)
}

// taskFailed 报告任务 store 的错误；会话已过期时跳转提示已经输出
// taskFailed reports the task store error unless the session just expired
func (l *Loop) taskFailed() {
	if !l.Session.Present() {
		return
	}
	l.fail(l.Tasks.Error())
}
