package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Command line theme: a handful of reusable styles and icons.

const (
	IconBeatmap = "🎵"
	IconStory   = "🎬"
	IconScore   = "🏆"
	IconIndex   = "📚"
	IconSave    = "💾"
	IconStats   = "📊"
	IconDone    = "✅"
	IconWarn    = "⚠️"
	IconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // pink
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Count renders n in green, or muted when it is zero. A non-zero count of
// failures should use Failures instead.
func Count(n int) string {
	if n == 0 {
		return Muted.Render("0")
	}
	return Good.Render(fmt.Sprint(n))
}

// Failures renders n in red unless it is zero.
func Failures(n int) string {
	if n == 0 {
		return Muted.Render("0")
	}
	return Bad.Render(fmt.Sprint(n))
}

// Mods renders mod acronyms, or "NM" for none.
func Mods(acronyms []string) string {
	if len(acronyms) == 0 {
		return Muted.Render("NM")
	}
	return Gold.Render(strings.Join(acronyms, ""))
}

// Table renders rows as "label: value" lines inside a panel.
func Table(title string, rows [][2]string) string {
	lines := make([]string, 0, len(rows)+1)
	if title != "" {
		lines = append(lines, H2.Render(title))
	}
	for _, r := range rows {
		lines = append(lines, LabelValue(r[0], r[1]))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}
