// Package report renders the journal for a terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"trenerka/internal/core"
)

const barWidth = 30

var (
	accent = lipgloss.Color("#8884d8")
	muted  = lipgloss.Color("#a6adc8")
	warn   = lipgloss.Color("#fab387")

	titleStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	weekStyle  = lipgloss.NewStyle().Width(12)
	totalStyle = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	barStyle   = lipgloss.NewStyle().Foreground(accent)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	warnStyle  = lipgloss.NewStyle().Foreground(warn).Bold(true)

	cardStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

// WeeklyTable renders one row per week with a bar proportional to the
// largest total. Flagged buckets and skipped records are called out.
func WeeklyTable(summary core.WeeklySummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Оплата по неделям"))
	b.WriteString("\n")

	if len(summary.Weeks) == 0 {
		b.WriteString(mutedStyle.Render("нет данных"))
		b.WriteString("\n")
	}

	peak := decimal.Zero
	for _, w := range summary.Weeks {
		if w.Total.GreaterThan(peak) {
			peak = w.Total
		}
	}

	for _, w := range summary.Weeks {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			weekStyle.Render(w.Week),
			totalStyle.Render(core.FormatRubles(w.Total)),
			" ",
			barStyle.Render(bar(w.Total, peak)),
			mutedStyle.Render(fmt.Sprintf(" (%d)", w.Sessions)),
		)
		b.WriteString(row)
		if w.Invalid > 0 {
			b.WriteString(warnStyle.Render(fmt.Sprintf("  ! некорректная оплата: %d", w.Invalid)))
		}
		b.WriteString("\n")
	}

	if summary.Skipped > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("пропущено записей с некорректной датой: %d", summary.Skipped)))
		b.WriteString("\n")
	}
	return b.String()
}

func bar(total, peak decimal.Decimal) string {
	if !peak.IsPositive() || !total.IsPositive() {
		return ""
	}
	n := int(total.Mul(decimal.NewFromInt(barWidth)).Div(peak).Round(0).IntPart())
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// SessionList renders each session as a bordered card, in log order.
func SessionList(sessions []core.Session) string {
	if len(sessions) == 0 {
		return mutedStyle.Render("Тренировок нет") + "\n"
	}

	cards := make([]string, 0, len(sessions))
	for _, c := range core.Cards(sessions) {
		body := strings.Join([]string{
			lipgloss.NewStyle().Bold(true).Render(c.Heading()),
			"План: " + c.Plan,
			c.Money,
			"Был: " + c.Attended,
			"Комментарий: " + c.AfterComment,
			"Дополнительно: " + c.Comment,
		}, "\n")
		cards = append(cards, cardStyle.Render(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...) + "\n"
}
