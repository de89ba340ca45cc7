package status

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiroot/internal/registry"
	"multiroot/internal/selection"
)

func TestFromSnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot selection.Snapshot
		want     Item
	}{
		{
			name:     "active configuration",
			snapshot: selection.Snapshot{Names: []string{"debug"}, Active: 0, Name: "debug", HasActive: true},
			want:     Item{Text: "debug", Tooltip: Tooltip, Visible: true, Command: Command},
		},
		{
			name:     "no configurations",
			snapshot: selection.Snapshot{Active: registry.NoIndex},
			want:     Item{Text: "(no config)", Tooltip: Tooltip, Visible: false, Command: Command},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromSnapshot(tt.snapshot))
		})
	}
}

func TestRender(t *testing.T) {
	item := Item{Text: "debug", Visible: true}
	out := item.Render(20)
	assert.Contains(t, out, "debug")
	assert.LessOrEqual(t, lipgloss.Width(out), 20)

	assert.Empty(t, Item{Text: "debug"}.Render(20), "hidden items render nothing")
	assert.Empty(t, item.Render(0))
	assert.Empty(t, item.Render(2), "no room inside the padding")
}

func TestRender_Truncates(t *testing.T) {
	item := Item{Text: "a-very-long-configuration-name", Visible: true}
	out := item.Render(12)
	assert.LessOrEqual(t, lipgloss.Width(out), 12)
	assert.Contains(t, out, "…")

	wide := Item{Text: "構成構成構成構成", Visible: true}
	out = wide.Render(9)
	assert.LessOrEqual(t, lipgloss.Width(out), 9)
	assert.True(t, strings.Contains(out, "構"))
}

func TestIndicator_FollowsController(t *testing.T) {
	ctrl := selection.New("")
	ind := NewIndicator()
	assert.False(t, ind.Item().Visible)

	detach := ind.Attach(ctrl)
	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "debug"}, {Name: "release"}}},
	}})
	require.True(t, ind.Item().Visible)
	assert.Equal(t, "debug", ind.Item().Text)

	ctrl.SelectIndex(1)
	assert.Equal(t, "release", ind.Item().Text)

	ctrl.Reload(&registry.Document{})
	assert.False(t, ind.Item().Visible)
	assert.Equal(t, "(no config)", ind.Item().Text)

	detach()
	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "x"}}},
	}})
	assert.False(t, ind.Item().Visible)
}

func TestIndicator_AttachAfterReload(t *testing.T) {
	ctrl := selection.New("")
	ctrl.Reload(&registry.Document{Folders: []registry.FolderSpec{
		{Name: "app", Configurations: []registry.NamedConfig{{Name: "debug"}}},
	}})

	ind := NewIndicator()
	defer ind.Attach(ctrl)()
	assert.Equal(t, "debug", ind.Item().Text)
}
