package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/teamflow/internal/theme"
)

// Frame is the dashboard chrome: a one-line title bar above the active view
// and a one-line status bar below it.
type Frame struct {
	Width  int
	Height int
}

const frameRows = 2

// NewFrame sizes the chrome for a terminal.
func NewFrame(width, height int) Frame {
	return Frame{Width: width, Height: height}
}

// Body returns the size left for the active view.
func (f Frame) Body() (width, height int) {
	return f.Width, max(f.Height-frameRows, 0)
}

// TitleBar renders "TeamFlow › section" with the signed-in user on the
// right. Offline marks a failing refresh loop.
func (f Frame) TitleBar(section, user string, offline bool) string {
	left := "TeamFlow"
	if section != "" {
		left += " › " + section
	}
	right := user
	if offline {
		right = strings.TrimSpace("offline  " + user)
	}
	return f.row(theme.HeaderStyle, theme.HeaderStyle.Render(left), theme.HeaderStyle.Render(right))
}

// StatusBar shows message in place of the key hints while one is set.
func (f Frame) StatusBar(hints, message string, isErr bool) string {
	style := theme.StatusBarStyle
	text := hints
	if message != "" {
		text = message
		if isErr {
			style = style.Foreground(theme.ColorRed)
		}
	}
	return f.row(theme.StatusBarStyle, style.Render(text), "")
}

// Compose stacks the title bar, body and status bar.
func (f Frame) Compose(title, body, status string) string {
	return lipgloss.JoinVertical(lipgloss.Left, title, body, status)
}

// row pads left and right apart with bg's background to the frame width.
func (f Frame) row(bg lipgloss.Style, left, right string) string {
	gap := max(f.Width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	filler := lipgloss.NewStyle().Width(gap).Background(bg.GetBackground()).Render("")
	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}
