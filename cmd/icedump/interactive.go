package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/icewire/config"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	byteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type flatLine struct {
	node  *treeNode
	depth int
}

type interactiveModel struct {
	err       error
	filename  string
	cfg       config.Config
	kind      string
	root      *treeNode
	lines     []flatLine
	cursor    int
	viewHex   bool
	filtering bool
	filter    textinput.Model
}

type loadedMsg struct {
	err  error
	root *treeNode
}

func newInteractiveModel(filename string, cfg config.Config, kind string) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "type-id substring"
	ti.Prompt = "filter: "
	ti.Width = 40
	return &interactiveModel{filename: filename, cfg: cfg, kind: kind, filter: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: fmt.Errorf("read file: %w", err)}
	}
	v, err := decodeTop(data, m.cfg, m.kind)
	if err != nil {
		return loadedMsg{err: fmt.Errorf("decode: %w", err)}
	}
	return loadedMsg{root: buildTree(v)}
}

func flatten(n *treeNode, depth int, out []flatLine) []flatLine {
	out = append(out, flatLine{node: n, depth: depth})
	for _, c := range n.children {
		out = flatten(c, depth+1, out)
	}
	return out
}

// applyFilter rebuilds m.lines from m.root, keeping only lines whose label
// contains the filter substring (case-insensitive). An empty filter shows
// the whole tree.
func (m *interactiveModel) applyFilter() {
	all := flatten(m.root, 0, nil)
	needle := strings.ToLower(m.filter.Value())
	if needle == "" {
		m.lines = all
		m.cursor = 0
		return
	}
	var kept []flatLine
	for _, fl := range all {
		if strings.Contains(strings.ToLower(fl.node.label), needle) {
			kept = append(kept, fl)
		}
	}
	m.lines = kept
	m.cursor = 0
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			switch msg.String() {
			case "enter":
				m.filtering = false
				m.filter.Blur()
				m.applyFilter()
				return m, nil
			case "esc":
				m.filtering = false
				m.filter.SetValue("")
				m.filter.Blur()
				m.applyFilter()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if !m.viewHex && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if !m.viewHex && m.cursor < len(m.lines)-1 {
				m.cursor++
			}

		case "/":
			if !m.viewHex {
				m.filtering = true
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "enter":
			if len(m.lines) > 0 && len(m.lines[m.cursor].node.bytes) > 0 {
				m.viewHex = !m.viewHex
			}

		case "esc":
			m.viewHex = false
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.root = msg.root
		m.applyFilter()
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.root == nil {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("icedump"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.filtering {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc clear"))
		return b.String()
	}

	if len(m.lines) == 0 {
		b.WriteString("No slices match the filter.\n\n")
		b.WriteString(helpStyle.Render("/ filter • q quit"))
		return b.String()
	}

	if m.viewHex {
		fl := m.lines[m.cursor]
		b.WriteString(fmt.Sprintf("Bytes of %s:\n\n", typeStyle.Render(fl.node.label)))
		b.WriteString(byteStyle.Render(hex.Dump(fl.node.bytes)))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back • q quit"))
		return b.String()
	}

	for i, fl := range m.lines {
		line := strings.Repeat("  ", fl.depth) + fl.node.label
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.filter.Value() != "" {
		b.WriteString(helpStyle.Render(fmt.Sprintf("filter: %q • ", m.filter.Value())))
	}
	b.WriteString(helpStyle.Render("↑/↓ move • enter view bytes • / filter • q quit"))
	return b.String()
}

func runInteractive(file string, cfg config.Config, kind string) error {
	p := tea.NewProgram(newInteractiveModel(file, cfg, kind), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
