package i18n

import "testing"

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("route.home")
	if got != "Tasks" {
		t.Fatalf("T(route.home)=%q, want Tasks", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("route.home")
	if got != "任务" {
		t.Fatalf("T(route.home)=%q, want 任务", got)
	}
}

func TestNew_ChineseFromLang(t *testing.T) {
	i := New("zh_CN.UTF-8")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("route.login")
	if got != "登录" {
		t.Fatalf("T(route.login)=%q, want 登录", got)
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("msg.added", 7)
	if got != "Added task #7" {
		t.Fatalf("T with args=%q, want Added task #7", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en_US.UTF-8", "en"},
		{"zh_CN.UTF-8", "zh-CN"},
		{"zh_TW", "zh-CN"},
		{"en", "en"},
		{"", "en"},
		{"fr_FR", "fr-FR"},
		{"C", "en"},
		{"de_DE@euro", "de-DE"},
	}
	for _, tt := range tests {
		got := normalizeLocale(tt.input)
		if got != tt.expected {
			t.Errorf("normalizeLocale(%q)=%q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGlobal(t *testing.T) {
	g := Global()
	if g == nil {
		t.Fatal("Global() should not be nil")
	}
	// 应该返回同一实例 / Should return same instance
	g2 := Global()
	if g != g2 {
		t.Fatal("Global() should return same instance")
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range EnMessages {
		if _, ok := ZhCNMessages[key]; !ok {
			t.Errorf("zh-CN catalog missing %q", key)
		}
	}
	for key := range ZhCNMessages {
		if _, ok := EnMessages[key]; !ok {
			t.Errorf("zh-CN catalog has extra key %q", key)
		}
	}
}

func TestInitSurvivesLaterGlobal(t *testing.T) {
	Init("zh-CN")
	defer Init("en")
	if got := T("route.home"); got != "任务" {
		t.Fatalf("T after Init=%q, want 任务", got)
	}
}

func TestUnknownLocaleFallsBackToEnglish(t *testing.T) {
	i := New("fr_FR")
	if i.Locale() != "fr-FR" {
		t.Fatalf("Locale()=%q", i.Locale())
	}
	if got := i.T("msg.deleted", 3); got != "Deleted task #3" {
		t.Fatalf("fallback T=%q", got)
	}
}

func TestSupported(t *testing.T) {
	got := Supported()
	if len(got) != 2 || got[0] != "en" || got[1] != "zh-CN" {
		t.Fatalf("Supported()=%v", got)
	}
}
