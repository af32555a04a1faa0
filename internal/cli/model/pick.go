// Package model holds the Bubble Tea models used by interactive commands.
package model

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnema/lacquer/internal/cli/styles"
	"github.com/bnema/lacquer/internal/domain/entity"
)

// PickKeyMap binds the picker keys.
type PickKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// DefaultPickKeyMap returns the default picker bindings.
func DefaultPickKeyMap() PickKeyMap {
	return PickKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// PickModel is the Bubble Tea model for the interactive skin picker.
type PickModel struct {
	skins   []*entity.Skin
	cursor  int
	current string
	keys    PickKeyMap
	theme   *styles.Theme

	selected string
}

// NewPickModel creates a picker over skins, with the cursor on current.
func NewPickModel(theme *styles.Theme, skins []*entity.Skin, current string) PickModel {
	cursor := 0
	for i, skin := range skins {
		if skin.ID == current {
			cursor = i
			break
		}
	}
	return PickModel{
		skins:   skins,
		cursor:  cursor,
		current: current,
		keys:    DefaultPickKeyMap(),
		theme:   theme,
	}
}

// Selected returns the chosen skin id, empty when cancelled.
func (m PickModel) Selected() string {
	return m.selected
}

// Init implements tea.Model.
func (m PickModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Select):
		if len(m.skins) > 0 {
			m.selected = m.skins[m.cursor].ID
		}
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.skins)-1 {
			m.cursor++
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m PickModel) View() string {
	s := m.theme.Title.Render("Pick a skin") + "\n\n"

	for i, skin := range m.skins {
		line := styles.Swatch(skin.Swatch.Light) + " " + styles.Swatch(skin.Swatch.Dark) + " " + skin.Label
		if skin.ID == m.current {
			line += " " + m.theme.Subtle.Render("(current)")
		}

		if i == m.cursor {
			s += m.theme.ListItemSelected.String() + m.theme.Normal.Render(line) + "\n"
		} else {
			s += m.theme.ListItem.Render(line) + "\n"
		}
	}

	s += "\n" + m.theme.Subtle.Render("↑/↓ move · enter switch · esc cancel") + "\n"
	return s
}
