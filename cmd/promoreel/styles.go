package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ivlev/promoreel/internal/batch"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorError   = "#FF5F5F"
	colorInfo    = "#626262"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorSuccess))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorError))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorInfo))

	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPrimary)).
			Padding(0, 2)
)

// statusLine renders one finished row as "[n/total] OK city -> file".
func statusLine(s batch.Status, done, total int) string {
	counter := infoStyle.Render(fmt.Sprintf("[%d/%d]", done, total))
	city := s.Job.Row.City
	if city == "" {
		city = "?"
	}
	if s.Result.OK {
		return fmt.Sprintf("%s %s %s %s", counter, okStyle.Render("OK  "), city, infoStyle.Render(s.Result.Output))
	}
	return fmt.Sprintf("%s %s %s %s", counter, failStyle.Render("FAIL"), city, s.Result.Message)
}

func summaryBox(sum batch.Summary) string {
	body := fmt.Sprintf("%s  %s",
		okStyle.Render(fmt.Sprintf("успешно: %d", sum.Succeeded)),
		failStyle.Render(fmt.Sprintf("ошибок: %d", sum.Failed)))
	return summaryStyle.Render(body)
}
