package config

const (
	DefaultBaseURL   = "https://test-back-front-5.onrender.com"
	DefaultAPIPrefix = "/api"

	UIModeREPL = "repl"
	UIModeTUI  = "tui"
)
