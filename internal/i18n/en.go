package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// UI - Titles
	"app.title":      "Tasker",
	"route.home":     "Tasks",
	"route.login":    "Login",
	"route.register": "Register",
	"route.detail":   "Task",
	"route.add":      "New task",

	// UI - Form fields
	"field.username":    "Username",
	"field.password":    "Password",
	"field.title":       "Title",
	"field.description": "Description",

	// Filter / sort
	"filter.all":       "All",
	"filter.active":    "Active",
	"filter.completed": "Completed",
	"sort.newest":      "Newest first",
	"sort.oldest":      "Oldest first",

	// UI - Status bar
	"status.ready":     "Ready",
	"status.loading":   "Loading...",
	"status.user":      "Signed in as user %s",
	"status.anonymous": "Not signed in",
	"status.counts":    "%d tasks · %d active · %d completed",
	"task.done":        "done",
	"task.open":        "open",
	"task.created":     "Created %s",
	"tasks.empty":      "No tasks",
	"tasks.header":     "ID|Status|Title|Created",

	// Outcomes
	"msg.login_ok":        "Welcome, user %s",
	"msg.register_ok":     "Registration successful, please log in",
	"msg.logout":          "Signed out",
	"msg.session_expired": "Session expired, please log in again",
	"msg.login_required":  "Please log in first",
	"msg.added":           "Added task #%d",
	"msg.updated":         "Updated task #%d",
	"msg.deleted":         "Deleted task #%d",
	"msg.fetched":         "%d tasks loaded",
	"msg.filter":          "Filter: %s",
	"msg.sort":            "Sort: %s",
	"msg.whoami":          "user %s",
	"msg.help_hint":       "Type /help for commands",

	// UI - Keybindings (TUI)
	"keys.auth":   "tab next field · enter submit · ctrl+r login/register · ctrl+c quit",
	"keys.list":   "a add · space toggle · d delete · f filter · s sort · r refresh · enter open · ctrl+o logout · q quit",
	"keys.form":   "tab next field · ctrl+s save · esc back",
	"keys.detail": "space toggle · e edit · d delete · esc back",

	// Prompts (REPL)
	"prompt.username":       "Username: ",
	"prompt.password":       "Password: ",
	"prompt.description":    "Description (optional): ",
	"prompt.confirm_delete": "Delete task #%d? [y/N] ",

	// Commands
	"cmd.register": "Create an account",
	"cmd.login":    "Sign in",
	"cmd.logout":   "Sign out",
	"cmd.whoami":   "Show the signed-in user",
	"cmd.tasks":    "List tasks using the current filter and sort",
	"cmd.show":     "Show one task",
	"cmd.add":      "Add a task",
	"cmd.done":     "Mark a task completed",
	"cmd.undo":     "Mark a task active",
	"cmd.edit":     "Change a task's title",
	"cmd.rm":       "Delete a task",
	"cmd.filter":   "Set the filter (all, active, completed)",
	"cmd.sort":     "Set the sort (newest, oldest)",
	"cmd.refresh":  "Reload tasks from the server",
	"cmd.help":     "Show available commands",
	"cmd.exit":     "Exit application",

	// Errors
	"error.usage":           "usage: %s",
	"error.bad_id":          "invalid task id: %q",
	"error.unknown_command": "unknown command: %s (try /help)",
	"error.not_found":       "task #%d not found",
	"error.title_required":  "Title is required",
	"error.input":           "Input error: %s",
}
