package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/stresscli/internal/engine"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)
)

// View renders the live progress panel.
func (m Model) View() string {
	cfg := m.run.Config()

	var content strings.Builder

	title := "Stress Test - Running"
	if m.stopping {
		title = "Stress Test - Stopping"
	}
	content.WriteString(styleTitle.Render(title) + "\n\n")

	content.WriteString(fmt.Sprintf("%s %s\n\n",
		styleTitle.Render(cfg.EffectiveMethod()), cfg.TargetURL))

	content.WriteString(fmt.Sprintf("%d/%d requests (%.1f%%)\n",
		m.snap.Completed, m.snap.Planned, m.snap.Progress()*100))
	content.WriteString(m.bar.ViewAs(m.snap.Progress()) + "\n\n")

	content.WriteString(fmt.Sprintf("Elapsed:   %s\n", formatDuration(m.snap.Elapsed)))
	content.WriteString(fmt.Sprintf("In flight: %d\n", m.snap.InFlight))
	content.WriteString(fmt.Sprintf("Success:   %s   Failed: %s\n",
		styleSuccess.Render(fmt.Sprintf("%d", m.snap.Successes)),
		styleError.Render(fmt.Sprintf("%d", m.snap.Failures))))

	if m.snap.P50 > 0 {
		content.WriteString(fmt.Sprintf("P50: %s   P95: %s   P99: %s\n",
			formatLatency(m.snap.P50), formatLatency(m.snap.P95), formatLatency(m.snap.P99)))
	}

	footer := "q: Stop test"
	if m.stopping {
		footer = "Stopping gracefully, letting in-flight requests finish..."
	}
	content.WriteString("\n" + styleSubtle.Render(footer))

	return content.String() + "\n"
}

// RenderReport formats a final report for the terminal. Used both after the
// live view exits and in plain (non-interactive) mode.
func RenderReport(report *engine.Report) string {
	var content strings.Builder

	content.WriteString(styleTitle.Render("Stress Test Report") + "\n\n")
	content.WriteString(fmt.Sprintf("%s %s\n", report.Method, report.TargetURL))
	content.WriteString(fmt.Sprintf("Run:      %s\n", report.RunID))
	content.WriteString(fmt.Sprintf("Status:   %s\n", renderStatus(report.Status)))
	content.WriteString(fmt.Sprintf("Duration: %s\n\n", formatDuration(report.Duration)))

	content.WriteString(fmt.Sprintf("Requests:    %d planned, %d completed\n", report.Planned, report.Completed))
	content.WriteString(fmt.Sprintf("Successes:   %d (success rate %.1f%%)\n", report.Successes, report.SuccessRate*100))
	if len(report.FailuresByKind) > 0 {
		content.WriteString("Failures:    " + formatHistogram(report.FailuresByKind) + "\n")
	}
	if len(report.StatusClasses) > 0 {
		content.WriteString("Status:      " + formatStatusClasses(report.StatusClasses) + "\n")
	}
	content.WriteString(fmt.Sprintf("Throughput:  %s\n", report.ThroughputString()))

	if report.Latency != nil {
		l := report.Latency
		content.WriteString("\n" + styleTitle.Render("Latency") + "\n")
		content.WriteString(fmt.Sprintf("min %s   mean %s   max %s\n",
			formatLatency(l.Min), formatLatency(l.Mean), formatLatency(l.Max)))
		content.WriteString(fmt.Sprintf("p50 %s   p90 %s   p95 %s   p99 %s\n",
			formatLatency(l.P50), formatLatency(l.P90), formatLatency(l.P95), formatLatency(l.P99)))
	} else {
		content.WriteString("\n" + styleSubtle.Render("Latency: no data (no request was delivered)") + "\n")
	}

	content.WriteString("\n" + styleTitle.Render("Insights") + "\n")
	if len(report.Recommendations) == 0 {
		content.WriteString(styleSuccess.Render("No performance flags raised.") + "\n")
	} else {
		for _, rec := range report.Recommendations {
			content.WriteString(styleWarning.Render("! ") + rec + "\n")
		}
	}

	return content.String()
}

func renderStatus(status engine.RunStatus) string {
	switch status {
	case engine.StatusCompleted:
		return styleSuccess.Render(string(status))
	case engine.StatusCancelled:
		return styleWarning.Render(string(status))
	default:
		return string(status)
	}
}

func formatHistogram(hist map[engine.Outcome]int) string {
	keys := make([]string, 0, len(hist))
	for k := range hist {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, hist[engine.Outcome(k)]))
	}
	return strings.Join(parts, "  ")
}

func formatStatusClasses(hist map[engine.StatusClass]int) string {
	order := []engine.StatusClass{
		engine.Status2xx, engine.Status3xx, engine.Status4xx,
		engine.Status5xx, engine.StatusClassOther,
	}
	parts := make([]string, 0, len(hist))
	for _, class := range order {
		if count, ok := hist[class]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", class, count))
		}
	}
	return strings.Join(parts, "  ")
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func formatLatency(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Microseconds())/1000.0)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
