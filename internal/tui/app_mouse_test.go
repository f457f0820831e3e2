package tui

import (
	"testing"

	"github.com/theirongolddev/rupee/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 1 // leading space

		for i, tab := range components.Tabs {
			w := tabWidthForTest(tab.Name, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 2 // gap
		}
	}
}

func tabWidthForTest(name string, active bool) int {
	w := len(name) + 2 // horizontal padding in tab renderer
	if !active {
		w += 3 // "[n]" shortcut prefix
	}
	return w
}
