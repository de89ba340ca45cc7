// Package picker provides the interactive terminal chooser used to select
// the active configuration.
package picker

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"multiroot/internal/color"
	"multiroot/internal/selection"
)

const (
	defaultWidth  = 40
	defaultHeight = 14
)

type keyMap struct {
	Choose key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "cancel")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
}

type listItem struct {
	selection.Item
	active bool
}

func (i listItem) FilterValue() string { return i.Label }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	item, ok := li.(listItem)
	if !ok {
		return
	}

	str := "  " + color.MutedStyle.Render(item.Label)
	if index == m.Index() {
		str = color.SelectedStyle.Render("▶ " + item.Label)
	}
	if item.active {
		str += " " + color.ActiveStyle.Render("(active)")
	}
	fmt.Fprint(w, str)
}

// model is the bubbletea model behind Pick.
type model struct {
	list      list.Model
	chosen    *selection.Item
	cancelled bool
}

func newModel(title string, items []selection.Item, active int) model {
	listItems := make([]list.Item, 0, len(items))
	for _, it := range items {
		listItems = append(listItems, listItem{Item: it, active: it.Index == active})
	}

	l := list.New(listItems, itemDelegate{}, defaultWidth, defaultHeight)
	l.Title = title
	l.Styles.Title = color.TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Choose, keys.Cancel}
	}
	for pos, it := range items {
		if it.Index == active {
			l.Select(pos)
			break
		}
	}

	return model{list: l}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.cancelled = true
			return m, tea.Quit
		}
		// While typing a filter, keys belong to the filter input.
		if m.list.FilterState() != list.Filtering {
			switch {
			case key.Matches(msg, keys.Choose):
				if it, ok := m.list.SelectedItem().(listItem); ok {
					chosen := it.Item
					m.chosen = &chosen
				} else {
					m.cancelled = true
				}
				return m, tea.Quit
			case key.Matches(msg, keys.Cancel) && m.list.FilterState() == list.Unfiltered:
				m.cancelled = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.chosen != nil || m.cancelled {
		return ""
	}
	return m.list.View()
}

// TerminalPicker is a selection.Picker that shows a list in the terminal.
type TerminalPicker struct {
	Title  string
	Active int
	Input  io.Reader
	Output io.Writer
}

// New creates a picker on the process terminal. active is the index marked
// as current and initially highlighted.
func New(title string, active int) *TerminalPicker {
	return &TerminalPicker{
		Title:  title,
		Active: active,
		Input:  os.Stdin,
		Output: os.Stderr,
	}
}

// Pick shows items and blocks until the user chooses one, cancels, or ctx
// ends. A cancelled context is returned as its error.
func (p *TerminalPicker) Pick(ctx context.Context, items []selection.Item) (selection.Item, bool, error) {
	if len(items) == 0 {
		return selection.Item{}, false, nil
	}

	prog := tea.NewProgram(
		newModel(p.Title, items, p.Active),
		tea.WithContext(ctx),
		tea.WithInput(p.Input),
		tea.WithOutput(p.Output),
	)

	final, err := prog.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return selection.Item{}, false, ctxErr
	}
	if err != nil {
		return selection.Item{}, false, fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(model)
	if !ok || m.chosen == nil {
		return selection.Item{}, false, nil
	}
	return *m.chosen, true, nil
}
