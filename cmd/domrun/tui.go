package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dop251/goja"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/dombind/errors"
	"github.com/wippyai/dombind/native"
	"github.com/wippyai/dombind/script"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [file.js]",
		Short: "Browse the document tree and evaluate JavaScript interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal() {
				return errors.Unsupported(errors.PhaseRuntime, "tui requires a terminal on stdout")
			}

			ctx := context.Background()
			e, err := a.newEngine(ctx, "")
			if err != nil {
				return err
			}
			defer func() {
				if err := e.Close(ctx); err != nil {
					a.logger.Warn("close engine", zap.Error(err))
				}
			}()

			m := newTUIModel(e, a.logger.Named("script"))
			defer m.rt.Close()

			if len(args) == 1 {
				src, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read script: %w", err)
				}
				m.eval(args[0], string(src))
			}

			p := tea.NewProgram(m, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

type tuiState int

const (
	stateBrowse tuiState = iota
	stateEval
)

type tuiModel struct {
	err      error
	engine   *native.Engine
	rt       *script.Runtime
	console  *bytes.Buffer
	result   string
	output   []string
	rows     []treeRow
	input    textinput.Model
	selected int
	state    tuiState
}

func newTUIModel(e *native.Engine, logger *zap.Logger) *tuiModel {
	console := &bytes.Buffer{}
	ti := textinput.New()
	ti.Placeholder = `document.body.appendChild(document.createElement("p"))`
	ti.Prompt = "js> "
	ti.Width = 60

	m := &tuiModel{
		engine:  e,
		rt:      script.New(e.Context(), script.WithLogger(logger), script.WithStdout(console)),
		console: console,
		input:   ti,
		state:   stateBrowse,
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) refresh() {
	m.rows = treeRows(m.engine.Context().Document().AsNode())
	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
}

// eval runs src on the model's goroutine; the script runtime is not safe
// for concurrent use.
func (m *tuiModel) eval(name, src string) {
	v, err := m.rt.Run(name, src)
	m.err = err
	m.result = ""
	if err == nil && v != nil && !goja.IsUndefined(v) {
		m.result = v.String()
	}
	if m.console.Len() > 0 {
		m.output = append(m.output, strings.Split(strings.TrimRight(m.console.String(), "\n"), "\n")...)
		m.console.Reset()
		if n := len(m.output); n > 8 {
			m.output = m.output[n-8:]
		}
	}
	m.refresh()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateEval {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.state = stateBrowse
			m.input.Blur()
			return m, nil
		case "enter":
			m.eval("tui", m.input.Value())
			m.input.Reset()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}
	case "r":
		m.refresh()
	case ":", "e":
		m.state = stateEval
		m.err = nil
		m.result = ""
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("DOM Inspector"))
	b.WriteString(" ")
	b.WriteString(m.engine.URL())
	b.WriteString("\n\n")

	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + r.label
		switch {
		case i == m.selected:
			b.WriteString(selectedStyle.Render("> " + line))
		case strings.HasPrefix(r.label, "<"):
			b.WriteString("  " + tagStyle.Render(line))
		default:
			b.WriteString("  " + textStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.selected >= 0 && m.selected < len(m.rows) {
		n := m.rows[m.selected].node
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("node %s  type %d  ptr %#x  listeners %d\n",
			n.NodeName(), n.NodeType(), uint32(n.Ptr()), m.engine.RegistrationCount(n.Ptr())))
	}

	if len(m.output) > 0 {
		b.WriteString("\n")
		for _, line := range m.output {
			b.WriteString(helpStyle.Render("| "))
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.result != "":
		b.WriteString(resultStyle.Render(m.result))
		b.WriteString("\n")
	}

	if m.state == stateEval {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • esc back"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • e evaluate • r refresh • q quit"))
	}
	return b.String()
}
