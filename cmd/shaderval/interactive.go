package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/shader-validator/angle"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	settingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const defaultSource = `precision mediump float;

void main() {
    gl_FragColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`

var interactiveTypes = []angle.ShaderType{angle.FragmentShader, angle.VertexShader}

type interactiveModel struct {
	ctx      context.Context
	checker  *checker
	editor   textarea.Model
	filename string
	result   *report
	showLog  bool
	running  bool
	width    int
}

type checkedMsg struct {
	rep report
}

func newInteractiveModel(ctx context.Context, c *checker, filename, source string) *interactiveModel {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.SetWidth(80)
	ta.SetHeight(14)
	ta.SetValue(source)
	ta.Focus()

	if c.opts.shaderType == 0 {
		c.opts.shaderType = angle.FragmentShader
		if t, ok := angle.ShaderTypeFromPath(filename); ok {
			c.opts.shaderType = t
		}
	}

	return &interactiveModel{
		ctx:      ctx,
		checker:  c,
		editor:   ta,
		filename: filename,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.check())
}

// check validates a snapshot of the editor so later edits don't race it.
func (m *interactiveModel) check() tea.Cmd {
	m.running = true
	c := *m.checker
	source := m.editor.Value()
	name := m.filename
	return func() tea.Msg {
		return checkedMsg{rep: c.checkSource(m.ctx, name, source)}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+s":
			return m, m.check()

		case "ctrl+p":
			m.checker.opts.spec = next(angle.ShaderSpecs(), m.checker.opts.spec)
			return m, m.check()

		case "ctrl+o":
			m.checker.opts.output = next(angle.Outputs(), m.checker.opts.output)
			return m, m.check()

		case "ctrl+t":
			m.checker.opts.shaderType = next(interactiveTypes, m.checker.opts.shaderType)
			return m, m.check()

		case "tab":
			m.showLog = !m.showLog
			return m, nil
		}

	case checkedMsg:
		m.running = false
		m.result = &msg.rep
		if !msg.rep.ok() {
			m.showLog = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func next[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("shaderval"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")
	opts := m.checker.opts
	b.WriteString(fmt.Sprintf("spec %s  output %s  type %s\n\n",
		settingStyle.Render(opts.spec.String()),
		settingStyle.Render(opts.output.String()),
		settingStyle.Render(opts.shaderType.String())))

	b.WriteString(m.editor.View())
	b.WriteString("\n\n")

	b.WriteString(m.resultView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+s validate • ctrl+p spec • ctrl+o output • ctrl+t type • tab code/log • esc quit"))
	return b.String()
}

func (m *interactiveModel) resultView() string {
	if m.result == nil {
		return helpStyle.Render("validating...")
	}
	r := m.result

	status := passStyle.Render("PASS")
	if !r.ok() {
		status = failStyle.Render("FAIL")
	}
	if m.running {
		status += helpStyle.Render(" (validating...)")
	}

	var body string
	switch {
	case m.showLog && r.err != nil && r.log == "":
		body = r.err.Error()
	case m.showLog:
		body = r.log
		if body == "" {
			body = "(empty info log)"
		}
	default:
		body = r.code
		if body == "" {
			body = "(no object code)"
		}
	}

	title := "object code"
	if m.showLog {
		title = "info log"
	}
	panel := panelStyle
	if m.width > 0 {
		panel = panel.Width(max(m.width-4, 20))
	}
	return status + " " + helpStyle.Render(title) + "\n" + panel.Render(strings.TrimRight(body, "\n"))
}

func runInteractive(ctx context.Context, c *checker, filename string) error {
	source := defaultSource
	if filename == "" {
		filename = "untitled.frag"
	} else {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		source = string(data)
	}

	p := tea.NewProgram(newInteractiveModel(ctx, c, filename, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
