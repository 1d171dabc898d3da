// Package tui renders end-of-run summaries for the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/rotbench/internal/combine"
	"github.com/mattjoyce/rotbench/internal/dispatch"
)

// Theme centralizes the summary styling.
type Theme struct {
	StatusOK     lipgloss.Style
	StatusFailed lipgloss.Style
	StatusQueued lipgloss.Style

	Border lipgloss.Style
	Title  lipgloss.Style
	Label  lipgloss.Style
	Dim    lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
		StatusQueued: lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Label: lipgloss.NewStyle().Width(10),
		Dim:   lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
}

// RenderRun formats a dispatcher summary.
func RenderRun(s dispatch.Summary, theme Theme) string {
	failed := theme.StatusOK.Render("0")
	if s.Failed > 0 {
		failed = theme.StatusFailed.Render(fmt.Sprint(s.Failed))
	}

	lines := []string{
		theme.Title.Render("rotbench run") + " " + theme.Dim.Render(s.RunID),
		row(theme, "jobs", fmt.Sprint(s.Total)),
		row(theme, "succeeded", theme.StatusOK.Render(fmt.Sprint(s.Succeeded))),
		row(theme, "failed", failed),
	}
	if s.Skipped > 0 {
		lines = append(lines, row(theme, "skipped", theme.StatusQueued.Render(fmt.Sprint(s.Skipped))))
	}
	lines = append(lines,
		row(theme, "mean", formatDuration(s.Mean)),
		row(theme, "elapsed", formatDuration(s.Elapsed)),
	)
	return theme.Border.Render(strings.Join(lines, "\n"))
}

// RenderCombine formats a combinator result.
func RenderCombine(output string, r combine.Result, theme Theme) string {
	lines := []string{
		theme.Title.Render("rotbench combine"),
		row(theme, "output", output),
		row(theme, "inputs", fmt.Sprint(r.Files)),
		row(theme, "rows", theme.StatusOK.Render(fmt.Sprint(r.Rows))),
		row(theme, "skipped", theme.StatusQueued.Render(fmt.Sprint(r.Skipped))),
		row(theme, "blake3", theme.Dim.Render(shortDigest(r.Digest))),
	}
	return theme.Border.Render(strings.Join(lines, "\n"))
}

func row(theme Theme, label, value string) string {
	return theme.Label.Render(label) + value
}

func shortDigest(d string) string {
	if len(d) > 16 {
		return d[:16]
	}
	return d
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Hour:
		return d.Round(time.Second / 10).String()
	default:
		return d.Round(time.Second).String()
	}
}
