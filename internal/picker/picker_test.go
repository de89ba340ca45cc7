package picker

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiroot/internal/selection"
)

var testItems = []selection.Item{
	{Label: "debug", Index: 0},
	{Label: "release", Index: 1},
	{Label: "profile", Index: 2},
}

func send(t *testing.T, m model, msgs ...tea.Msg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		var ok bool
		m, ok = next.(model)
		require.True(t, ok)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_StartsOnActive(t *testing.T) {
	m := newModel("Select", testItems, 1)
	it, ok := m.list.SelectedItem().(listItem)
	require.True(t, ok)
	assert.Equal(t, "release", it.Label)
	assert.True(t, it.active)
}

func TestModel_ChooseWithEnter(t *testing.T) {
	m := newModel("Select", testItems, 0)

	m, cmd := send(t, m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	require.NotNil(t, m.chosen)
	assert.Equal(t, selection.Item{Label: "profile", Index: 2}, *m.chosen)
	assert.False(t, m.cancelled)
	assert.True(t, isQuit(cmd))
	assert.Empty(t, m.View())
}

func TestModel_Cancel(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{name: "escape", msg: tea.KeyMsg{Type: tea.KeyEsc}},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
		{name: "q", msg: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel("Select", testItems, 0)
			m, cmd := send(t, m, tt.msg)
			assert.True(t, m.cancelled)
			assert.Nil(t, m.chosen)
			assert.True(t, isQuit(cmd))
		})
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newModel("Select", testItems, 0)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Equal(t, 80, m.list.Width())
	assert.Equal(t, 20, m.list.Height())
	assert.Contains(t, m.View(), "debug")
}

func TestPick_NoItems(t *testing.T) {
	p := New("Select", 0)
	_, ok, err := p.Pick(context.Background(), nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTerminalPicker_SatisfiesPicker(t *testing.T) {
	var _ selection.Picker = New("Select", 0)
}
