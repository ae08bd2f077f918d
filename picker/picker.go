// Package picker asks for input paths in the terminal when they were not
// given on the command line.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned when the user leaves without choosing.
var ErrCancelled = errors.New("picker: selection cancelled")

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).MarginBottom(1)
	hintStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type fileModel struct {
	title    string
	picker   filepicker.Model
	selected string
	warning  string
	quitting bool
}

func newFileModel(title, dir string, allowed []string) fileModel {
	fp := filepicker.New()
	fp.CurrentDirectory = dir
	fp.AllowedTypes = allowed
	fp.Height = 15
	return fileModel{title: title, picker: fp}
}

func (m fileModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m fileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.selected = path
		return m, tea.Quit
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.warning = fmt.Sprintf("%s não é um tipo permitido (%s)", filepath.Base(path), strings.Join(m.picker.AllowedTypes, ", "))
	}

	return m, cmd
}

func (m fileModel) View() string {
	if m.quitting || m.selected != "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(errorStyle.Render(m.warning))
		b.WriteString("\n")
	}
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter: escolher  esc: cancelar"))
	return b.String()
}

// File lets the user browse from the working directory to a file with one
// of the allowed extensions (e.g. ".xlsx"). Any extension is accepted when
// allowed is empty.
func File(title string, allowed ...string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	final, err := tea.NewProgram(newFileModel(title, dir, allowed), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", err
	}

	m := final.(fileModel)
	if m.selected == "" {
		return "", ErrCancelled
	}
	return m.selected, nil
}

type promptModel struct {
	label    string
	input    textinput.Model
	done     bool
	quitting bool
}

func newPromptModel(label, placeholder string) promptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	return promptModel{label: label, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) != "" {
				m.done = true
				return m, tea.Quit
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done || m.quitting {
		return ""
	}
	return titleStyle.Render(m.label) + "\n" + m.input.View() + "\n" + hintStyle.Render("enter: confirmar  esc: cancelar")
}

// Prompt reads one non-empty line, such as the name of a database.
func Prompt(label, placeholder string) (string, error) {
	final, err := tea.NewProgram(newPromptModel(label, placeholder), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", err
	}

	m := final.(promptModel)
	if !m.done {
		return "", ErrCancelled
	}
	return strings.TrimSpace(m.input.Value()), nil
}

// PathOr returns path when it is set and otherwise asks for a file.
func PathOr(path, title string, allowed ...string) (string, error) {
	if path != "" {
		return path, nil
	}
	return File(title, allowed...)
}
