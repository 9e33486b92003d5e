package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Name
		args  []string
	}{
		{input: "projects", want: Projects},
		{input: "  P ", want: Projects},
		{input: "my", want: Mine},
		{input: "Week", want: Week},
		{input: "exit", want: Quit},
		{input: "new fix login", want: NewTask, args: []string{"fix", "login"}},
		{input: "NEW Fix Login", want: NewTask, args: []string{"Fix", "Login"}},
		{input: "config", want: Settings},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, len(tt.args), len(got.Args))
			for i := range tt.args {
				assert.Equal(t, tt.args[i], got.Args[i])
			}
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("configure")
	assert.Error(t, err)

	_, err = Parse("   ")
	assert.Error(t, err)
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := typeText(New(80, 24), "meetings")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: Meetings, Args: []string{}}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestModel_UnknownAndCancel(t *testing.T) {
	m := typeText(New(80, 24), "bogus")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, UnknownMsg{Input: "bogus"}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, CancelMsg{}, cmd())
}
