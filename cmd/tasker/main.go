package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"tasker/internal/bootstrap"
	"tasker/internal/config"
	"tasker/internal/i18n"
	"tasker/internal/repl"
	"tasker/internal/tui"
)

type options struct {
	configPath string
	tui        bool
	initDir    string
	lang       string
	baseURL    string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("tasker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config JSON/JSONC")
	fs.BoolVar(&opts.tui, "tui", false, "Start the full-screen interface instead of the REPL")
	fs.StringVar(&opts.initDir, "init", "", "Write a project config template under `dir` and exit")
	fs.StringVar(&opts.lang, "lang", "", "Interface language (en, zh-CN)")
	fs.StringVar(&opts.baseURL, "base-url", "", "Task service base URL override")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

// applyOptions 命令行参数优先于配置文件与环境变量
// applyOptions lets flags win over config files and environment
func applyOptions(cfg config.Config, opts options) config.Config {
	if opts.tui {
		cfg.UI.Mode = config.UIModeTUI
	}
	if v := strings.TrimSpace(opts.lang); v != "" {
		cfg.UI.Locale = v
	}
	if v := strings.TrimSpace(opts.baseURL); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	return cfg
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}

	if opts.initDir != "" {
		path, err := config.WriteScaffold(opts.initDir)
		if err != nil {
			fmt.Fprintf(stderr, "init project config failed: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "project config: %s\n", path)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "load config failed: %v\n", err)
		return 1
	}
	cfg = applyOptions(cfg, opts)
	i18n.Init(cfg.UI.Locale)

	res, err := bootstrap.Build(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "startup failed: %v\n", err)
		return 1
	}
	defer res.Close()

	if cfg.UI.Mode == config.UIModeTUI {
		err = tui.Run(tui.Deps{Auth: res.Auth, Tasks: res.Tasks, Guard: res.Guard})
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = repl.Run(ctx, res)
	}
	if err != nil {
		res.Logger.Error("session ended with error", "err", err)
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
