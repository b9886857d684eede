// Package i18n holds the user-facing message catalogs. Lookups fall back to
// English, then to the key itself.
package i18n

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

const fallbackLocale = "en"

var catalogs = map[string]map[string]string{
	"en":    EnMessages,
	"zh-CN": ZhCNMessages,
}

// I18n 绑定到一个 locale 的翻译器，创建后只读
// I18n translates for one locale and is read-only once created
type I18n struct {
	locale  string
	primary map[string]string
}

var global atomic.Pointer[I18n]

// Global 返回全局实例；未 Init 时按环境变量检测 locale
// Global returns the process-wide translator, detecting the locale from the
// environment when Init was never called
func Global() *I18n {
	if g := global.Load(); g != nil {
		return g
	}
	global.CompareAndSwap(nil, New(""))
	return global.Load()
}

// Init replaces the process-wide translator.
func Init(locale string) {
	global.Store(New(locale))
}

// T 全局翻译快捷函数
// T is a global translation shortcut
func T(key string, args ...any) string {
	return Global().T(key, args...)
}

// New 创建 i18n 实例；空 locale 时从环境检测
// New creates a translator; an empty locale is detected from the environment
func New(locale string) *I18n {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	return &I18n{locale: locale, primary: catalogs[locale]}
}

func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.primary[key]
	if !ok {
		if tmpl, ok = catalogs[fallbackLocale][key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func (i *I18n) Locale() string {
	return i.locale
}

// Supported lists the locales that have a catalog.
func Supported() []string {
	out := make([]string, 0, len(catalogs))
	for k := range catalogs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DetectLocale 按 TASKER_LANG、LANG、LC_ALL、LC_MESSAGES 顺序检测
// DetectLocale checks TASKER_LANG, LANG, LC_ALL and LC_MESSAGES in order
func DetectLocale() string {
	for _, env := range []string{"TASKER_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return fallbackLocale
}

// normalizeLocale maps POSIX locale names onto catalog names: "zh_TW.UTF-8"
// becomes "zh-CN", "en_US" becomes "en", anything else keeps its region.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "C" || s == "POSIX" {
		return fallbackLocale
	}
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.ReplaceAll(s, "_", "-")
	switch lower := strings.ToLower(s); {
	case strings.HasPrefix(lower, "zh"):
		return "zh-CN"
	case strings.HasPrefix(lower, "en"):
		return fallbackLocale
	}
	return s
}
