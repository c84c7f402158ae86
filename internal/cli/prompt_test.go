package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/mamaar/jsxsplit/pkg/refactor"
)

func update(t *testing.T, m promptModel, msg tea.Msg) promptModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(promptModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return pm
}

func TestPromptModelSubmit(t *testing.T) {
	m := newPromptModel(refactor.PromptOptions{Title: "Name", Placeholder: "NewComponent"})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Card")})
	assert.Equal(t, "Card", m.input.Value())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(promptModel)
	assert.True(t, m.submitted)
	assert.False(t, m.cancelled)
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestPromptModelCancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := newPromptModel(refactor.PromptOptions{Value: "Card"})
		m = update(t, m, tea.KeyMsg{Type: key})
		assert.True(t, m.cancelled)
		assert.False(t, m.submitted)
	}
}

func TestPromptModelViewShowsInvalidName(t *testing.T) {
	m := newPromptModel(refactor.PromptOptions{Title: "Name of the new component", Value: "user card"})
	view := m.View()
	assert.Contains(t, view, "Name of the new component")
	assert.Contains(t, view, "UserCard")

	m = newPromptModel(refactor.PromptOptions{Title: "Name", Value: "UserCard"})
	assert.NotContains(t, m.View(), "invalid")
}
