package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0, 0)
		want := 1
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += tabGap * (len(Tabs) - 1)
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: rendered width %d, computed %d", active, got, want)
		}
	}
}

func TestTabAtX(t *testing.T) {
	if got := TabAtX(0, 0); got != -1 {
		t.Fatalf("TabAtX(0) = %d, want -1", got)
	}
	if got := TabAtX(0, 1); got != 0 {
		t.Fatalf("TabAtX(1) = %d, want 0", got)
	}
	second := 1 + TabVisualWidth(Tabs[0], true) + tabGap
	if got := TabAtX(0, second); got != 1 {
		t.Fatalf("TabAtX(%d) = %d, want 1", second, got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('5') != 4 || TabIdxByKey('x') != -1 {
		t.Fatal("unexpected tab key mapping")
	}
}

func TestFormatChartLabel(t *testing.T) {
	cases := map[float64]string{
		500:      "500",
		2000:     "2k",
		2500:     "2.5k",
		100000:   "1L",
		250000:   "2.5L",
		20000000: "2Cr",
		0.5:      "0.50",
	}
	for in, want := range cases {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBudgetBarTruncatesLabel(t *testing.T) {
	if got := truncate("Groceries and more", 8); got != "Groceri…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("Food", 8); got != "Food" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestBarChartDrawsLimitRule(t *testing.T) {
	out := BarChart([]float64{200, 1500, 600}, []string{"a", "b", "c"}, 1000, 40, 8)
	if !strings.Contains(out, "╌") {
		t.Fatal("limit rule missing")
	}
	plain := BarChart([]float64{200, 1500, 600}, nil, 0, 40, 8)
	if strings.Contains(plain, "╌") {
		t.Fatal("rule drawn without a limit")
	}
	if got := BarChart(nil, nil, 1000, 40, 8); got != "" {
		t.Fatalf("empty chart = %q", got)
	}
}
