package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Builder creates a live view for a named scenario.
type Builder func(name string) (Model, error)

type pickerState int

const (
	stateMenu pickerState = iota
	stateSim
)

// Picker lists scenarios and opens the chosen one in a live view.
type Picker struct {
	state  pickerState
	cursor int
	names  []string
	info   map[string]string
	build  Builder
	live   Model
	gen    int
	err    error
	theme  Theme
}

// NewPicker returns a menu over names. info holds an optional one-line
// description per name.
func NewPicker(names []string, info map[string]string, build Builder) Picker {
	return Picker{names: names, info: info, build: build, theme: Themes[0]}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.names)-1 {
			p.cursor++
		}
	case "enter", " ":
		if len(p.names) == 0 {
			return p, nil
		}
		live, err := p.build(p.names[p.cursor])
		if err != nil {
			p.err = err
			return p, nil
		}
		p.err = nil
		p.gen++
		live.gen = p.gen
		p.live = live
		p.state = stateSim
		return p, live.Init()
	}
	return p, nil
}

func (p Picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	st := newStyles(p.theme)
	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("GRAVSIM") + "\n    " + st.muted.Render("gravitational n-body simulator") + "\n    " + Separator(30, p.theme) + "\n\n")
	for i, name := range p.names {
		desc := p.info[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", st.key.Render("▸"), st.value.Bold(true).Render(fmt.Sprintf("%-14s", name)), st.muted.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", st.muted.Render(fmt.Sprintf("%-14s", name)), st.muted.Render(desc)))
		}
	}
	if p.err != nil {
		b.WriteString("\n    " + st.failed.Render(p.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.key.Render("j/k") + st.muted.Render(" navigate  ") + st.key.Render("enter") + st.muted.Render(" start  ") + st.key.Render("esc") + st.muted.Render(" back  ") + st.key.Render("q") + st.muted.Render(" quit") + "\n")
	return b.String()
}

// Run shows m full screen until it quits and returns the final model.
func Run(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}
