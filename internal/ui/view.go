package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/migenius/wait-for-realityserver/internal/logtail"
	"github.com/migenius/wait-for-realityserver/internal/monitor"
)

const maxShownTransitions = 5

// renderMain renders the full UI.
func (m Model) renderMain() string {
	styles := m.theme.Styles()

	sections := []string{
		m.renderHeader(styles),
		m.renderStatus(styles),
	}
	if m.tail != nil {
		sections = append(sections, m.renderLogs(styles))
	}
	sections = append(sections, styles.Footer.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(styles Styles) string {
	sep := styles.FaintText.Render(" │ ")
	segments := []string{
		styles.AccentText.Bold(true).Render("wait-for-rs"),
		styles.Text.Render(truncateMiddle(m.target, max(m.width/2, 12))),
		styles.MutedText.Render("theme ") + styles.FaintText.Render(m.theme.Name),
	}
	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func (m Model) renderStatus(styles Styles) string {
	var b strings.Builder

	switch m.phase {
	case phaseConnecting:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(styles.Text.Render("Waiting for RealityServer"))
		b.WriteString(styles.FaintText.Render("  " + humanizeDuration(m.now().Sub(m.started))))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render(m.attemptLine()))

	case phaseFailed:
		b.WriteString(styles.DangerText.Render("Handshake failed"))
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(truncate(m.err.Error(), max(m.width-6, 20))))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("press any key to exit"))

	case phaseReady:
		b.WriteString(styles.SuccessText.Render("RealityServer " + m.result.Version))
		b.WriteString("\n")
		if !m.result.Monitoring() {
			b.WriteString(styles.MutedText.Render("monitoring disabled"))
			break
		}
		snap := m.snapshot
		b.WriteString(styles.Badge(snap.Connectable))
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(fmt.Sprintf("probes %d", snap.Probes)))
		b.WriteString(styles.FaintText.Render(" · "))
		b.WriteString(failureStyle(styles, snap.ConsecutiveFailures).Render(
			fmt.Sprintf("failures %d", snap.ConsecutiveFailures)))
		if !snap.LastChange.IsZero() {
			b.WriteString(styles.FaintText.Render(" · "))
			b.WriteString(styles.MutedText.Render("changed " + humanizeDuration(m.now().Sub(snap.LastChange)) + " ago"))
		}
		if snap.IsOffline() && snap.LastError != nil {
			b.WriteString("\n")
			b.WriteString(styles.WarningText.Render(truncate(snap.LastError.Error(), max(m.width-6, 20))))
		}
		if lines := m.transitionLines(styles); len(lines) > 0 {
			b.WriteString("\n")
			b.WriteString(strings.Join(lines, "\n"))
		}
	}

	return styles.Panel.Width(max(m.width-2, 0)).Render(b.String())
}

func (m Model) attemptLine() string {
	if m.failures == 0 {
		return fmt.Sprintf("attempt 1/%d", m.numRetries)
	}
	return fmt.Sprintf("attempt %d/%d · %d retries remaining · retry every %s",
		m.failures+1, m.numRetries, m.progress.RetriesRemaining, m.progress.RetryInterval)
}

func (m Model) transitionLines(styles Styles) []string {
	start := max(len(m.transitions)-maxShownTransitions, 0)
	lines := make([]string, 0, len(m.transitions)-start)
	for i := len(m.transitions) - 1; i >= start; i-- {
		tr := m.transitions[i]
		style := styles.SuccessText
		if tr.event == monitor.EventDisconnected {
			style = styles.DangerText
		}
		lines = append(lines, styles.FaintText.Render(tr.at.Format("15:04:05"))+" "+style.Render(string(tr.event)))
	}
	return lines
}

func (m Model) renderLogs(styles Styles) string {
	title := styles.AccentText.Bold(true).Render("Log")
	return styles.Panel.Width(max(m.width-2, 0)).Render(title + "\n" + m.logView.View())
}

func failureStyle(styles Styles, failures int) lipgloss.Style {
	if failures > 0 {
		return styles.WarningText
	}
	return styles.MutedText
}

// colorizeLines styles log lines by level and clips them to width.
func colorizeLines(styles Styles, lines []string, width int) string {
	limit := max(width-6, 20)
	out := make([]string, len(lines))
	for i, line := range lines {
		line = truncate(line, limit)
		switch logtail.LevelOf(line) {
		case logtail.LevelError:
			out[i] = styles.DangerText.Render(line)
		case logtail.LevelWarn:
			out[i] = styles.WarningText.Render(line)
		case logtail.LevelDebug:
			out[i] = styles.FaintText.Render(line)
		default:
			out[i] = styles.Text.Render(line)
		}
	}
	return strings.Join(out, "\n")
}
