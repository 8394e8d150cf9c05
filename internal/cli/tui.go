package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

// Editor styles
var (
	colorDim      = lipgloss.Color("240")
	colorCyan     = lipgloss.Color("86")
	colorWhite    = lipgloss.Color("252")
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHelp     = lipgloss.NewStyle().Foreground(colorDim)
	styleStatus   = lipgloss.NewStyle().Foreground(colorWhite)
	styleEmpty    = lipgloss.NewStyle().Foreground(colorDim)
	styleSelected = lipgloss.NewStyle().Bold(true).Reverse(true)

	// itemPalette cycles per item so adjacent rectangles are easy to tell apart.
	itemPalette = []lipgloss.Color{"39", "208", "113", "170", "214", "81", "203", "229"}
)

func newEditCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit a dashboard interactively in the terminal",
		Long: `Edit opens the dashboard in a terminal editor. Mutations are staged in an
edit session: confirm writes them to the store in one batch, cancel rolls
every change back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext(cmd, configPath)
			if err != nil {
				return err
			}
			eng, cleanup, err := cc.attachEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			m := newEditorModel(cc.ctx, eng)
			if _, err := tea.NewProgram(m, tea.WithContext(cc.ctx)).Run(); err != nil {
				return err
			}
			// Leaving the editor mid-session discards the staged changes.
			return eng.ExitEditing(cc.ctx, false)
		},
	}
}

// editorModel is the bubbletea model for the interactive grid editor.
type editorModel struct {
	ctx    context.Context
	eng    *grid.Engine
	cursor int
	status string
}

func newEditorModel(ctx context.Context, eng *grid.Engine) editorModel {
	return editorModel{ctx: ctx, eng: eng, status: "ready"}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

// selected returns the item under the cursor in reading order.
func (m editorModel) selected() (grid.ItemLayout, bool) {
	items := m.eng.Items()
	if len(items) == 0 {
		return grid.ItemLayout{}, false
	}
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	return items[m.cursor], true
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	report := func(err error, done string) {
		if err != nil {
			m.status = err.Error()
			return
		}
		m.status = done
	}

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "n":
		if n := len(m.eng.Items()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}

	case "up", "down", "left", "right":
		it, ok := m.selected()
		if !ok {
			break
		}
		r := it.Rect()
		switch key.String() {
		case "up":
			r.Y--
		case "down":
			r.Y++
		case "left":
			r.X--
		case "right":
			r.X++
		}
		report(m.eng.PlaceAt(m.ctx, it.ID, r), fmt.Sprintf("moved %s to %s", it.ID, r))

	case "H", "L", "J", "K":
		it, ok := m.selected()
		if !ok {
			break
		}
		w, h := it.Width, it.Height
		switch key.String() {
		case "H":
			w--
		case "L":
			w++
		case "K":
			h--
		case "J":
			h++
		}
		report(m.eng.Resize(m.ctx, it.ID, w, h), fmt.Sprintf("resized %s to %dx%d", it.ID, w, h))

	case "a":
		id := shortID()
		it := grid.ItemLayout{ID: id, Width: 2, Height: 1, MinWidth: 1, MinHeight: 1}
		report(m.eng.Add(m.ctx, it, true), "added "+id)

	case "d":
		if it, ok := m.selected(); ok {
			report(m.eng.Delete(m.ctx, it.ID), "deleted "+it.ID)
			if m.cursor > 0 {
				m.cursor--
			}
		}

	case "e":
		report(m.eng.StartEditing(), "edit session opened")

	case "c":
		report(m.eng.ExitEditing(m.ctx, true), "changes committed")

	case "x":
		report(m.eng.ExitEditing(m.ctx, false), "changes rolled back")
	}
	return m, nil
}

func (m editorModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("Gridboard"))
	if m.eng.Editing() {
		b.WriteString(styleStatus.Render("  [editing"))
		if m.eng.HasPendingChanges() {
			b.WriteString(styleStatus.Render("*"))
		}
		b.WriteString(styleStatus.Render("]"))
	}
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("↑↓←→ move  HLJK resize  tab select  a add  d delete  e edit  c commit  x cancel  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(styleHelp.Render(m.status))
	b.WriteString("\n")
	return b.String()
}

// renderGrid paints every cell of the occupied rows, one two-rune block per
// cell, with the selected item inverted.
func (m editorModel) renderGrid() string {
	items := m.eng.Items()
	selectedID := ""
	if it, ok := m.selected(); ok {
		selectedID = it.ID
	}

	styles := make(map[string]lipgloss.Style, len(items))
	labels := make(map[string]string, len(items))
	maxRow := 0
	for i, it := range items {
		styles[it.ID] = lipgloss.NewStyle().Foreground(itemPalette[i%len(itemPalette)])
		labels[it.ID] = cellLabel(it.ID)
		if bottom := it.StartY + it.Height; bottom > maxRow {
			maxRow = bottom
		}
	}

	rects := make(map[string]grid.Rect, len(items))
	for _, it := range items {
		rects[it.ID] = it.Rect()
	}

	var b strings.Builder
	for y := 0; y < maxRow; y++ {
		for x := 0; x < m.eng.SlotCount(); x++ {
			id := ""
			for _, it := range items {
				if rects[it.ID].Contains(x, y) {
					id = it.ID
					break
				}
			}
			switch {
			case id == "":
				b.WriteString(styleEmpty.Render(" ·"))
			case id == selectedID:
				b.WriteString(styleSelected.Render(labels[id]))
			default:
				b.WriteString(styles[id].Render(labels[id]))
			}
		}
		b.WriteString("\n")
	}
	if maxRow == 0 {
		b.WriteString(styleEmpty.Render("(empty layout: press a to add an item)"))
		b.WriteString("\n")
	}
	return b.String()
}

// cellLabel derives a stable two-rune label from an item id.
func cellLabel(id string) string {
	runes := []rune(id)
	if len(runes) >= 2 {
		return strings.ToUpper(string(runes[:2]))
	}
	return strings.ToUpper(string(runes)) + " "
}

// shortID generates a compact unique id for items added from the editor.
func shortID() string {
	return "item-" + uuid.NewString()[:8]
}
