// Package ui provides terminal styling for tracker CLI output.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kiracore/tracker/internal/model"
)

// Adaptive palette, light and dark terminals
var (
	ColorPass   = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	ColorReview = lipgloss.AdaptiveColor{Light: "#7c3aed", Dark: "#a78bfa"}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	ReviewStyle = lipgloss.NewStyle().Foreground(ColorReview)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	// HeaderStyle for section headers
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

const (
	SeparatorLight = "───────────────────────────────────────────────────────────────"
	SeparatorHeavy = "═══════════════════════════════════════════════════════════════"
)

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }
func RenderBold(s string) string   { return BoldStyle.Render(s) }

// RenderHeader renders a section header in uppercase
func RenderHeader(s string) string {
	return HeaderStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// Success renders a "✓ message" line
func Success(format string, args ...any) string {
	return PassStyle.Render(IconPass) + " " + fmt.Sprintf(format, args...)
}

// Warning renders a "⚠ message" line
func Warning(format string, args ...any) string {
	return WarnStyle.Render(IconWarn) + " " + fmt.Sprintf(format, args...)
}

// StatusStyle colours an issue status
func StatusStyle(s model.IssueStatus) lipgloss.Style {
	switch s {
	case model.StatusInProgress:
		return AccentStyle
	case model.StatusInReview:
		return ReviewStyle
	case model.StatusBlocked:
		return FailStyle
	case model.StatusDone:
		return PassStyle
	default:
		return MutedStyle
	}
}

// RenderStatus renders a status in its colour
func RenderStatus(s model.IssueStatus) string {
	return StatusStyle(s).Render(string(s))
}

// RenderPriority renders a priority, critical and high stand out
func RenderPriority(p model.Priority) string {
	switch p {
	case model.PriorityCritical:
		return FailStyle.Bold(true).Render(string(p))
	case model.PriorityHigh:
		return WarnStyle.Render(string(p))
	case model.PriorityLow:
		return MutedStyle.Render(string(p))
	default:
		return string(p)
	}
}

// RenderSprintStatus renders a sprint lifecycle state
func RenderSprintStatus(s model.SprintStatus) string {
	switch s {
	case model.SprintActive:
		return AccentStyle.Render(string(s))
	case model.SprintCompleted:
		return PassStyle.Render(string(s))
	default:
		return MutedStyle.Render(string(s))
	}
}

// ProgressBar renders a fixed-width bar for a percentage in [0, 100]
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return PassStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
}

// RelativeTime renders t relative to now, e.g. "3 days ago"
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// DueLabel renders a due date, red when the issue is overdue
func DueLabel(issue model.Issue, now time.Time) string {
	if issue.DueDate == nil {
		return ""
	}
	label := issue.DueDate.Format("2006-01-02")
	if issue.IsOverdue(now) {
		return FailStyle.Render(label + " (overdue)")
	}
	return label
}

// Truncate shortens s to max runes with an ellipsis
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
