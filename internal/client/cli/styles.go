package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/libraryclient/internal/client/models"
	"github.com/dmitrijs2005/libraryclient/internal/client/notify"
)

var (
	colorSuccess = lipgloss.Color("#8BC34A")
	colorInfo    = lipgloss.Color("#2196F3")
	colorWarning = lipgloss.Color("#FFC107")
	colorError   = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#6c7a89")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func kindColor(k notify.Kind) lipgloss.Color {
	switch k {
	case notify.KindError:
		return colorError
	case notify.KindWarning:
		return colorWarning
	case notify.KindInfo:
		return colorInfo
	default:
		return colorSuccess
	}
}

// renderNotification draws a visible message as a one-line banner; a hidden
// message renders as "".
func renderNotification(m notify.Message) string {
	if !m.Visible {
		return ""
	}
	badge := lipgloss.NewStyle().Bold(true).Foreground(kindColor(m.Kind)).Render(strings.ToUpper(string(m.Kind)))
	return badge + " " + m.Text
}

// renderTable draws records as a bordered table under title.
func renderTable(title string, rows []models.Tabular) string {
	if len(rows) == 0 {
		return titleStyle.Render(title) + "\n" + mutedStyle.Render("No records.")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(rows[0].Header()...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.Row()...)
	}
	return titleStyle.Render(title) + "\n" + t.String()
}

// renderPairs draws key/value lines with aligned keys, sorted by key.
func renderPairs(title string, pairs map[string]string) string {
	keys := make([]string, 0, len(pairs))
	width := 0
	for k := range pairs {
		keys = append(keys, k)
		width = max(width, lipgloss.Width(k))
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	keyStyle := mutedStyle.Width(width + 2)
	for _, k := range keys {
		sb.WriteString("\n")
		sb.WriteString(keyStyle.Render(k + ":"))
		sb.WriteString(pairs[k])
	}
	return sb.String()
}

func statsPairs(s models.Stats) map[string]string {
	out := make(map[string]string, len(s))
	for k, v := range s {
		switch x := v.(type) {
		case nil:
			out[k] = "-"
		case float64:
			out[k] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(x)
		}
	}
	return out
}
