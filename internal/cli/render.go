package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"FlowAdvisor/internal/domain"
	"FlowAdvisor/internal/rerank"
)

var (
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	reasonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func renderRecommendation(rec domain.Recommendation) string {
	if rec.Empty() {
		return cardStyle.Render(titleStyle.Render(rec.Reason))
	}

	t := rec.Task
	lines := []string{
		titleStyle.Render(rerank.PlainText(t.Name)),
		dimStyle.Render(taskMeta(*t)),
		"",
		reasonStyle.Render(rec.Reason),
	}
	if rec.Note != "" {
		lines = append(lines, noteStyle.Render("Note: "+rec.Note))
	}
	if rec.Explanation != "" {
		lines = append(lines, "", reasonStyle.Render(rec.Explanation))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("source: %s  id: %s", rec.Source, t.ID)))

	return cardStyle.Render(strings.Join(lines, "\n"))
}

func taskMeta(t domain.Task) string {
	parts := []string{"due " + formatDeadline(t)}
	if t.EstimatedHours != nil {
		parts = append(parts, fmt.Sprintf("%.1fh", *t.EstimatedHours))
	}
	parts = append(parts, string(domain.ClassifyDifficulty(t.Difficulty)))
	return strings.Join(parts, " · ")
}

func formatDeadline(t domain.Task) string {
	if t.Deadline == nil {
		return "-"
	}
	return t.Deadline.Local().Format("2006-01-02 15:04")
}
