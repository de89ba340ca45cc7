// Package status keeps the status indicator that shows the active
// configuration.
package status

import (
	"sync"

	"github.com/mattn/go-runewidth"

	"multiroot/internal/color"
	"multiroot/internal/selection"
)

const (
	// Tooltip is shown when hovering the indicator.
	Tooltip = "Multi-root C/C++ configuration"
	// Command is invoked when the indicator is clicked.
	Command = "multiRootCppConfig.ConfigurationSelect"

	ellipsis = "…"
)

// Item is the presentable state of the indicator.
type Item struct {
	Text    string `json:"text" yaml:"text"`
	Tooltip string `json:"tooltip" yaml:"tooltip"`
	Visible bool   `json:"visible" yaml:"visible"`
	Command string `json:"command" yaml:"command"`
}

// FromSnapshot computes the indicator for a controller snapshot. It is
// hidden when there is no active configuration.
func FromSnapshot(s selection.Snapshot) Item {
	return Item{
		Text:    s.StatusText(),
		Tooltip: Tooltip,
		Visible: s.HasActive,
		Command: Command,
	}
}

// Render draws the item in at most width cells. Hidden items render empty.
func (i Item) Render(width int) string {
	if !i.Visible || width <= 0 {
		return ""
	}

	inner := width - color.BadgeStyle.GetHorizontalPadding()
	if inner <= 0 {
		return ""
	}
	text := i.Text
	if runewidth.StringWidth(text) > inner {
		text = runewidth.Truncate(text, inner, ellipsis)
	}
	return color.BadgeStyle.Render(text)
}

// Indicator follows a controller and keeps the current Item.
type Indicator struct {
	mu   sync.RWMutex
	item Item
}

// NewIndicator creates a hidden indicator.
func NewIndicator() *Indicator {
	return &Indicator{item: FromSnapshot(selection.Snapshot{})}
}

// Attach recomputes the item on every controller event and once right away.
// The returned function detaches.
func (ind *Indicator) Attach(ctrl *selection.Controller) func() {
	ind.set(FromSnapshot(ctrl.Snapshot()))
	return ctrl.Subscribe(func(evt selection.Event) {
		ind.set(FromSnapshot(evt.Snapshot))
	})
}

func (ind *Indicator) set(item Item) {
	ind.mu.Lock()
	ind.item = item
	ind.mu.Unlock()
}

// Item returns the current item.
func (ind *Indicator) Item() Item {
	ind.mu.RLock()
	defer ind.mu.RUnlock()
	return ind.item
}
