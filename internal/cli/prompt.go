package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mamaar/jsxsplit/pkg/refactor"
)

// TerminalPrompter asks for a value with an inline text input
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TerminalPrompter) Prompt(ctx context.Context, opts refactor.PromptOptions) (string, bool, error) {
	program := tea.NewProgram(newPromptModel(opts),
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("prompt failed: %w", err)
	}

	m, ok := final.(promptModel)
	if !ok || m.cancelled {
		return "", false, nil
	}
	value := strings.TrimSpace(m.input.Value())
	return value, value != "", nil
}

type promptModel struct {
	title     string
	input     textinput.Model
	submitted bool
	cancelled bool
}

func newPromptModel(opts refactor.PromptOptions) promptModel {
	ti := textinput.New()
	ti.Placeholder = opts.Placeholder
	ti.SetValue(opts.Value)
	ti.CharLimit = 128
	ti.Width = 40
	ti.Focus()
	return promptModel{title: opts.Title, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if value := strings.TrimSpace(m.input.Value()); value != "" {
		if err := refactor.ValidateComponentName(value); err != nil {
			b.WriteString(warnStyle.Render(err.Error()))
			b.WriteString("\n")
		}
	}
	b.WriteString(mutedStyle.Render("enter to confirm, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}
