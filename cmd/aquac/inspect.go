package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/aqua/ast"
	"github.com/dr8co/aqua/codegen"
	"github.com/dr8co/aqua/config"
	"github.com/dr8co/aqua/emit"
	"github.com/dr8co/aqua/resolver"
)

// readFixture loads an AST fixture file from disk.
func readFixture(path string) ([]byte, error) {
	absolute, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	//nolint:gosec // path comes from interactive operator input, not an untrusted request
	content, err := os.ReadFile(absolute)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return content, nil
}

// Prompt is the default prompt shown before an AST fixture path.
const Prompt = "ast> "

// Styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	resolveErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF5F87")).
				Bold(true)

	genErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8700")).
			Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))
)

// stageError distinguishes which stage of the pipeline an entry's
// error belongs to, so the inspector can style and label it accordingly.
type stageError int

const (
	noError stageError = iota
	decodeError
	resolveError
	generateError
)

// inspectResultMsg is delivered once a fixture has finished running
// through decode -> resolve -> generate.
type inspectResultMsg struct {
	output   string
	isError  bool
	errStage stageError
	elapsed  time.Duration
}

// model holds the inspector's state between key presses.
type model struct {
	textInput   textinput.Model
	history     []historyEntry
	target      config.Target
	username    string
	running     bool
	currentPath string
	spinner     spinner.Model
	noColor     bool
	debug       bool
}

// historyEntry records one fixture run and its outcome.
type historyEntry struct {
	path     string
	output   string
	isError  bool
	errStage stageError
	elapsed  time.Duration
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.noColor {
		return text
	}
	return style.Render(text)
}

func initialModel(username string, target config.Target, noColor, debug bool) model {
	ti := textinput.New()
	ti.Placeholder = "path/to/fixture.ast.json"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		history:   []historyEntry{},
		target:    target,
		username:  username,
		spinner:   s,
		noColor:   noColor,
		debug:     debug,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// inspectCmd decodes, resolves, and generates the fixture at path,
// reporting which stage failed (if any) and how long the whole
// pipeline took.
func inspectCmd(path string, target config.Target, debug bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		content, err := readFixture(path)
		if err != nil {
			return inspectResultMsg{
				output:   err.Error(),
				isError:  true,
				errStage: decodeError,
				elapsed:  time.Since(start),
			}
		}

		root, err := ast.DecodeJSON(content)
		if err != nil {
			return inspectResultMsg{
				output:   fmt.Sprintf("decoding AST: %s", err),
				isError:  true,
				errStage: decodeError,
				elapsed:  time.Since(start),
			}
		}

		var report strings.Builder

		if err := resolver.ResolveSymbols(root); err != nil {
			return inspectResultMsg{
				output:   fmt.Sprintf("resolving symbols: %s", err),
				isError:  true,
				errStage: resolveError,
				elapsed:  time.Since(start),
			}
		}
		if debug {
			report.WriteString("symbols resolved\n")
		}

		e := emit.New()
		gen := codegen.New(e, target.MaxScratch)
		if err := gen.Generate(root); err != nil {
			return inspectResultMsg{
				output:   fmt.Sprintf("generating code: %s", err),
				isError:  true,
				errStage: generateError,
				elapsed:  time.Since(start),
			}
		}

		report.WriteString(fmt.Sprintf("#pragma version %d\r\n%s", target.PragmaVersion, e.Output()))

		return inspectResultMsg{
			output:  report.String(),
			elapsed: time.Since(start),
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case inspectResultMsg:
		m.running = false
		m.history = append(m.history, historyEntry{
			path:     m.currentPath,
			output:   msg.output,
			isError:  msg.isError,
			errStage: msg.errStage,
			elapsed:  msg.elapsed,
		})
		m.currentPath = ""
		return m, nil

	case tea.KeyMsg:
		if m.running && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			path := m.textInput.Value()
			if path == "" {
				return m, nil
			}

			m.running = true
			m.currentPath = path
			m.textInput.SetValue("")

			return m, inspectCmd(path, m.target, m.debug)
		}
	}

	if !m.running {
		m.textInput, cmd = m.textInput.Update(msg)
	}

	if m.running {
		return m, m.spinner.Tick
	}

	return m, cmd
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " aqua compiler inspector "))
	s.WriteString("\n")

	if m.username != "" {
		s.WriteString(fmt.Sprintf("\nHello %s! Enter the path to an AST fixture to resolve and compile it.\n", m.username))
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(entry.path)
		s.WriteString("\n")

		if entry.isError {
			switch entry.errStage {
			case resolveError:
				s.WriteString(m.applyStyle(labelStyle, "resolve: "))
				s.WriteString(m.applyStyle(resolveErrorStyle, entry.output))
			case generateError:
				s.WriteString(m.applyStyle(labelStyle, "generate: "))
				s.WriteString(m.applyStyle(genErrorStyle, entry.output))
			default:
				s.WriteString(m.applyStyle(errorStyle, entry.output))
			}
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}

		if entry.elapsed > 10*time.Millisecond {
			timeStr := fmt.Sprintf(" (%.2fs)", entry.elapsed.Seconds())
			s.WriteString(m.applyStyle(historyStyle, timeStr))
		}

		s.WriteString("\n\n")
	}

	if m.running {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.currentPath)
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Compiling...")
		s.WriteString("\n\n")
	}

	if !m.running {
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	s.WriteString(m.applyStyle(historyStyle, "\n(Ctrl+C to quit)\n"))

	return s.String()
}

// startInspector launches the interactive Bubble Tea inspector.
func startInspector(debug bool) {
	username := "there"
	p := tea.NewProgram(initialModel(username, config.Default(), false, debug))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running inspector:", err)
	}
}
