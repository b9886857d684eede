package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tasker/internal/auth"
	"tasker/internal/guard"
	"tasker/internal/i18n"
	"tasker/internal/model"
	"tasker/internal/tasks"
)

// ViewID 界面标识
// ViewID identifies a screen
type ViewID int

const (
	ViewLogin ViewID = iota
	ViewRegister
	ViewList
	ViewForm
	ViewDetail
)

// --- Tea Messages ---

// AuthDoneMsg 登录或注册完成
// AuthDoneMsg reports a finished login or register call
type AuthDoneMsg struct {
	Register bool
	OK       bool
}

// TasksLoadedMsg 任务列表拉取完成
// TasksLoadedMsg reports a finished fetch
type TasksLoadedMsg struct{ OK bool }

// ActionDoneMsg 增删改完成
// ActionDoneMsg reports a finished add, update or delete
type ActionDoneMsg struct {
	OK     bool
	Notice string
}

// NavigateMsg 请求进入某个路由（经守卫解析）
// NavigateMsg asks to enter a route, resolved through the guard
type NavigateMsg struct{ Path string }

// RedirectMsg 会话过期后由导航守卫发出的跳转
// RedirectMsg is a forced navigation raised by the guard after session expiry
type RedirectMsg struct{ Path string }

// Deps 是 TUI 使用的 stores
// Deps are the stores the TUI drives
type Deps struct {
	Auth  *auth.Store
	Tasks *tasks.Store
	Guard *guard.Guard
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int

	view ViewID

	// 登录/注册表单 / Auth form
	username  textinput.Model
	password  textinput.Model
	authFocus int

	// 任务表单 / Task form
	title       textinput.Model
	description textarea.Model
	formFocus   int
	editingID   int64

	// 列表与详情 / List and detail
	cursor   int
	detail   viewport.Model
	detailID int64

	// 状态 / State
	busy      bool
	notice    string
	lastError string

	deps      Deps
	redirects <-chan string

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.I18n
}

// NewApp 创建 TUI 应用；redirects 可为 nil
// NewApp creates a new TUI application; redirects may be nil
func NewApp(deps Deps, redirects <-chan string) App {
	username := textinput.New()
	username.Placeholder = i18n.T("field.username")
	username.CharLimit = 80

	password := textinput.New()
	password.Placeholder = i18n.T("field.password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	title := textinput.New()
	title.Placeholder = i18n.T("field.title")
	title.CharLimit = 200

	description := textarea.New()
	description.Placeholder = i18n.T("field.description")
	description.ShowLineNumbers = false
	description.CharLimit = 4096
	description.SetHeight(6)

	return App{
		username:    username,
		password:    password,
		title:       title,
		description: description,
		deps:        deps,
		redirects:   redirects,
		theme:       DefaultTheme(),
		keys:        DefaultKeyMap(),
		locale:      i18n.Global(),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.waitRedirect(), func() tea.Msg { return NavigateMsg{Path: guard.PathHome} })
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case NavigateMsg:
		return a.navigate(msg.Path)

	case RedirectMsg:
		// 登录失败同样会使会话过期；已在登录页时保留原错误
		if a.view == ViewLogin || a.view == ViewRegister {
			return a, a.waitRedirect()
		}
		next, cmd := a.navigate(msg.Path)
		next.busy = false
		next.lastError = ""
		next.notice = next.locale.T("msg.session_expired")
		return next, tea.Batch(cmd, next.waitRedirect())

	case AuthDoneMsg:
		a.busy = false
		if !msg.OK {
			a.lastError = a.deps.Auth.Error()
			return a, nil
		}
		a.lastError = ""
		a.password.SetValue("")
		if msg.Register {
			a.notice = a.locale.T("msg.register_ok")
			return a.showAuth(ViewLogin)
		}
		user, _ := a.deps.Auth.User()
		a.notice = a.locale.T("msg.login_ok", user.ID)
		return a.navigate(guard.PathHome)

	case TasksLoadedMsg:
		a.busy = false
		if !msg.OK {
			if a.onTaskScreen() {
				a.lastError = a.deps.Tasks.Error()
			}
			return a, nil
		}
		a.lastError = ""
		a.clampCursor()
		a.refreshDetail()
		return a, nil

	case ActionDoneMsg:
		a.busy = false
		if !msg.OK {
			// 会话过期时已跳转到登录页，不再显示任务错误
			if a.onTaskScreen() {
				a.lastError = a.deps.Tasks.Error()
			}
			return a, nil
		}
		a.lastError = ""
		a.notice = msg.Notice
		if a.view == ViewForm {
			a.view = ViewList
			a.description.Blur()
			a.title.Blur()
		}
		if a.view == ViewDetail {
			if _, ok := a.deps.Tasks.Get(a.detailID); !ok {
				a.view = ViewList
			}
		}
		a.clampCursor()
		a.refreshDetail()
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		switch a.view {
		case ViewLogin, ViewRegister:
			return a.updateAuth(msg)
		case ViewList:
			return a.updateList(msg)
		case ViewForm:
			return a.updateForm(msg)
		case ViewDetail:
			return a.updateDetail(msg)
		}
	}

	return a.updateFocused(msg)
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	header := a.renderHeader()
	footer := a.renderStatusBar(a.width)
	help := a.theme.MutedStyle.Render(" " + a.helpLine())
	bodyHeight := a.height - lipgloss.Height(header) - 2
	if bodyHeight < 3 {
		bodyHeight = 3
	}

	var body string
	switch a.view {
	case ViewLogin, ViewRegister:
		body = a.renderAuth()
	case ViewList:
		body = a.renderList(bodyHeight)
	case ViewForm:
		body = a.renderForm()
	case ViewDetail:
		body = a.detail.View()
	}
	body = lipgloss.NewStyle().Width(a.width).Height(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help, footer)
}

// --- 导航 / Navigation ---

// navigate 经守卫解析后进入页面
// navigate enters the surface the guard resolves path to
func (a App) navigate(path string) (App, tea.Cmd) {
	switch a.deps.Guard.Resolve(path) {
	case guard.PathRegister:
		return a.showAuth(ViewRegister)
	case guard.PathLogin:
		return a.showAuth(ViewLogin)
	default:
		a.view = ViewList
		a.username.Blur()
		a.password.Blur()
		a.busy = true
		return a, a.fetchCmd()
	}
}

func (a App) showAuth(view ViewID) (App, tea.Cmd) {
	a.view = view
	a.authFocus = 0
	a.password.Blur()
	cmd := a.username.Focus()
	return a, cmd
}

func (a App) onTaskScreen() bool {
	return a.view == ViewList || a.view == ViewForm || a.view == ViewDetail
}

func (a App) waitRedirect() tea.Cmd {
	if a.redirects == nil {
		return nil
	}
	ch := a.redirects
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return RedirectMsg{Path: path}
	}
}

// --- 按键处理 / Key handling ---

func (a App) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.SwitchAuth):
		a.lastError = ""
		if a.view == ViewLogin {
			return a.showAuth(ViewRegister)
		}
		return a.showAuth(ViewLogin)
	case key.Matches(msg, a.keys.NextField):
		return a.focusAuth(1 - a.authFocus)
	case key.Matches(msg, a.keys.Submit):
		if a.authFocus == 0 {
			return a.focusAuth(1)
		}
		if a.busy {
			return a, nil
		}
		creds := model.Credentials{
			Username: strings.TrimSpace(a.username.Value()),
			Password: a.password.Value(),
		}
		a.busy = true
		a.notice = ""
		return a, a.authCmd(creds, a.view == ViewRegister)
	case key.Matches(msg, a.keys.Back):
		a.lastError = ""
		return a, nil
	}
	return a.updateFocused(msg)
}

func (a App) focusAuth(i int) (tea.Model, tea.Cmd) {
	a.authFocus = i
	if i == 0 {
		a.password.Blur()
		cmd := a.username.Focus()
		return a, cmd
	}
	a.username.Blur()
	cmd := a.password.Focus()
	return a, cmd
}

func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.deps.Tasks.Visible()
	selected, hasSelection := model.Task{}, false
	if a.cursor >= 0 && a.cursor < len(visible) {
		selected, hasSelection = visible[a.cursor], true
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(visible)-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.PageUp):
		a.cursor = max(a.cursor-a.pageSize(), 0)
	case key.Matches(msg, a.keys.PageDown):
		a.cursor = max(min(a.cursor+a.pageSize(), len(visible)-1), 0)
	case key.Matches(msg, a.keys.Filter):
		next := a.deps.Tasks.Filter().Next()
		a.deps.Tasks.SetFilter(next)
		a.notice = a.locale.T("msg.filter", a.filterLabel(next))
		a.clampCursor()
	case key.Matches(msg, a.keys.Sort):
		next := a.deps.Tasks.Sort().Toggle()
		a.deps.Tasks.SetSort(next)
		a.notice = a.locale.T("msg.sort", a.sortLabel(next))
	case key.Matches(msg, a.keys.Refresh):
		a.busy = true
		return a, a.fetchCmd()
	case key.Matches(msg, a.keys.Add):
		return a.openForm(model.Task{})
	case key.Matches(msg, a.keys.Logout):
		a.deps.Auth.Logout()
		a.notice = a.locale.T("msg.logout")
		a.lastError = ""
		return a.navigate(guard.PathHome)
	case hasSelection && key.Matches(msg, a.keys.Toggle):
		a.busy = true
		return a, a.toggleCmd(selected.ID)
	case hasSelection && key.Matches(msg, a.keys.Edit):
		return a.openForm(selected)
	case hasSelection && key.Matches(msg, a.keys.Delete):
		a.busy = true
		return a, a.deleteCmd(selected.ID)
	case hasSelection && key.Matches(msg, a.keys.Open):
		a.view = ViewDetail
		a.detailID = selected.ID
		a.refreshDetail()
	}
	return a, nil
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.view = ViewList
		a.lastError = ""
		a.title.Blur()
		a.description.Blur()
		return a, nil
	case key.Matches(msg, a.keys.NextField):
		return a.focusForm(1 - a.formFocus)
	case key.Matches(msg, a.keys.Save):
		return a.submitForm()
	case a.formFocus == 0 && key.Matches(msg, a.keys.Submit):
		return a.focusForm(1)
	}
	return a.updateFocused(msg)
}

func (a App) focusForm(i int) (tea.Model, tea.Cmd) {
	a.formFocus = i
	if i == 0 {
		a.description.Blur()
		cmd := a.title.Focus()
		return a, cmd
	}
	a.title.Blur()
	cmd := a.description.Focus()
	return a, cmd
}

func (a App) openForm(task model.Task) (tea.Model, tea.Cmd) {
	a.view = ViewForm
	a.editingID = task.ID
	a.title.SetValue(task.Title)
	a.description.SetValue(task.Description)
	a.lastError = ""
	return a.focusForm(0)
}

func (a App) submitForm() (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	title := strings.TrimSpace(a.title.Value())
	if title == "" {
		a.lastError = a.locale.T("error.title_required")
		return a, nil
	}
	description := strings.TrimSpace(a.description.Value())
	a.busy = true
	if a.editingID == 0 {
		return a, a.addCmd(model.TaskInput{Title: title, Description: description})
	}
	return a, a.updateCmd(a.editingID, model.TaskUpdate{Title: &title, Description: &description})
}

func (a App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back), key.Matches(msg, a.keys.Quit):
		a.view = ViewList
		return a, nil
	case key.Matches(msg, a.keys.Toggle):
		a.busy = true
		return a, a.toggleCmd(a.detailID)
	case key.Matches(msg, a.keys.Edit):
		if task, ok := a.deps.Tasks.Get(a.detailID); ok {
			return a.openForm(task)
		}
	case key.Matches(msg, a.keys.Delete):
		a.busy = true
		return a, a.deleteCmd(a.detailID)
	}
	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

// updateFocused 把消息交给当前获得焦点的输入组件
// updateFocused forwards msg to whichever input has focus
func (a App) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case ViewLogin, ViewRegister:
		if a.authFocus == 0 {
			a.username, cmd = a.username.Update(msg)
		} else {
			a.password, cmd = a.password.Update(msg)
		}
	case ViewForm:
		if a.formFocus == 0 {
			a.title, cmd = a.title.Update(msg)
		} else {
			a.description, cmd = a.description.Update(msg)
		}
	case ViewDetail:
		a.detail, cmd = a.detail.Update(msg)
	}
	return a, cmd
}

// --- 命令 / Commands ---

func (a App) authCmd(creds model.Credentials, register bool) tea.Cmd {
	store := a.deps.Auth
	return func() tea.Msg {
		ctx := context.Background()
		if register {
			return AuthDoneMsg{Register: true, OK: store.Register(ctx, creds)}
		}
		return AuthDoneMsg{OK: store.Login(ctx, creds)}
	}
}

func (a App) fetchCmd() tea.Cmd {
	store := a.deps.Tasks
	return func() tea.Msg {
		return TasksLoadedMsg{OK: store.Fetch(context.Background())}
	}
}

func (a App) addCmd(input model.TaskInput) tea.Cmd {
	store, locale := a.deps.Tasks, a.locale
	return func() tea.Msg {
		task, ok := store.Add(context.Background(), input)
		return ActionDoneMsg{OK: ok, Notice: locale.T("msg.added", task.ID)}
	}
}

func (a App) updateCmd(id int64, update model.TaskUpdate) tea.Cmd {
	store, locale := a.deps.Tasks, a.locale
	return func() tea.Msg {
		ok := store.Update(context.Background(), id, update)
		return ActionDoneMsg{OK: ok, Notice: locale.T("msg.updated", id)}
	}
}

func (a App) toggleCmd(id int64) tea.Cmd {
	store, locale := a.deps.Tasks, a.locale
	return func() tea.Msg {
		ok := store.Toggle(context.Background(), id)
		return ActionDoneMsg{OK: ok, Notice: locale.T("msg.updated", id)}
	}
}

func (a App) deleteCmd(id int64) tea.Cmd {
	store, locale := a.deps.Tasks, a.locale
	return func() tea.Msg {
		ok := store.Delete(context.Background(), id)
		return ActionDoneMsg{OK: ok, Notice: locale.T("msg.deleted", id)}
	}
}

// --- 内部方法 / Internal methods ---

func (a *App) relayout() {
	width := a.width - 4
	if width < 20 {
		width = 20
	}
	a.username.Width = width - 4
	a.password.Width = width - 4
	a.title.Width = width - 4
	a.description.SetWidth(width - 2)

	detailHeight := a.height - 5
	if detailHeight < 3 {
		detailHeight = 3
	}
	a.detail = viewport.New(a.width, detailHeight)
	a.refreshDetail()
}

func (a *App) refreshDetail() {
	if a.view != ViewDetail {
		return
	}
	task, ok := a.deps.Tasks.Get(a.detailID)
	if !ok {
		return
	}
	a.detail.SetContent(RenderMarkdown(TaskMarkdown(task, a.locale), a.width-2))
}

// pageSize is the number of list rows that fit on screen.
func (a App) pageSize() int {
	return max(a.height-5, 1)
}

func (a *App) clampCursor() {
	n := len(a.deps.Tasks.Visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a App) filterLabel(f model.Filter) string {
	return a.locale.T("filter." + string(f))
}

func (a App) sortLabel(s model.Sort) string {
	return a.locale.T("sort." + string(s))
}

func (a App) helpLine() string {
	switch a.view {
	case ViewLogin, ViewRegister:
		return a.locale.T("keys.auth")
	case ViewForm:
		return a.locale.T("keys.form")
	case ViewDetail:
		return a.locale.T("keys.detail")
	default:
		return a.locale.T("keys.list")
	}
}

// --- 渲染方法 / Render methods ---

func (a App) renderHeader() string {
	tabs := []struct {
		id   ViewID
		name string
	}{
		{ViewList, a.locale.T("route.home")},
		{ViewLogin, a.locale.T("route.login")},
		{ViewRegister, a.locale.T("route.register")},
	}
	active := a.view
	if active == ViewForm || active == ViewDetail {
		active = ViewList
	}

	parts := []string{a.theme.TitleStyle.Render(" " + a.locale.T("app.title") + " ")}
	for _, tab := range tabs {
		style := a.theme.InactiveTabStyle
		if tab.id == active {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(tab.name))
	}
	if a.view == ViewList {
		filter := a.deps.Tasks.Filter()
		order := a.deps.Tasks.Sort()
		parts = append(parts, a.theme.MutedStyle.Render(fmt.Sprintf("  %s · %s", a.filterLabel(filter), a.sortLabel(order))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderAuth() string {
	title := a.locale.T("route.login")
	if a.view == ViewRegister {
		title = a.locale.T("route.register")
	}
	userBox, passBox := a.theme.InputStyle, a.theme.InputStyle
	if a.authFocus == 0 {
		userBox = a.theme.FocusedStyle
	} else {
		passBox = a.theme.FocusedStyle
	}
	width := a.width - 4
	lines := []string{
		"",
		a.theme.TitleStyle.Render("  " + title),
		"",
		"  " + a.locale.T("field.username"),
		userBox.Width(width).Render(a.username.View()),
		"  " + a.locale.T("field.password"),
		passBox.Width(width).Render(a.password.View()),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderList(height int) string {
	visible := a.deps.Tasks.Visible()
	if len(visible) == 0 {
		return "\n" + a.theme.MutedStyle.Render("  "+a.locale.T("tasks.empty"))
	}
	// 光标附近的窗口 / Window around the cursor
	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := start + height
	if end > len(visible) {
		end = len(visible)
	}
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, RenderTaskRow(visible[i], i == a.cursor, a.width, a.theme))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderForm() string {
	title := a.locale.T("route.add")
	if a.editingID != 0 {
		title = fmt.Sprintf("%s #%d", a.locale.T("route.detail"), a.editingID)
	}
	titleBox, descBox := a.theme.InputStyle, a.theme.InputStyle
	if a.formFocus == 0 {
		titleBox = a.theme.FocusedStyle
	} else {
		descBox = a.theme.FocusedStyle
	}
	width := a.width - 4
	lines := []string{
		"",
		a.theme.TitleStyle.Render("  " + title),
		"",
		"  " + a.locale.T("field.title"),
		titleBox.Width(width).Render(a.title.View()),
		"  " + a.locale.T("field.description"),
		descBox.Width(width).Render(a.description.View()),
	}
	return strings.Join(lines, "\n")
}

func (a App) renderStatusBar(width int) string {
	status := a.locale.T("status.ready")
	if a.busy {
		status = a.locale.T("status.loading")
	}
	user := a.locale.T("status.anonymous")
	if u, ok := a.deps.Auth.User(); ok && a.deps.Auth.Authenticated() {
		user = a.locale.T("status.user", u.ID)
	}

	left := fmt.Sprintf(" %s · %s", user, status)
	if a.onTaskScreen() {
		c := a.deps.Tasks.Counts()
		left += " · " + a.locale.T("status.counts", c.Total, c.Active, c.Completed)
	}

	var right string
	switch {
	case a.lastError != "":
		right = a.theme.ErrorStyle.Render(a.lastError) + "  "
	case a.notice != "":
		right = a.theme.SuccessStyle.Render(a.notice) + "  "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return a.theme.StatusBarStyle.Width(width).Render(bar)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(deps Deps) error {
	redirects := make(chan string, 4)
	cancel := deps.Guard.OnRedirect(func(path string) {
		select {
		case redirects <- path:
		default:
		}
	})
	defer cancel()

	app := NewApp(deps, redirects)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
