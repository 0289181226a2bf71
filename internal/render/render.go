// Package render formats the aggregated report structures for the
// terminal. It is a pure view layer over internal/report.
package render

import (
	"fmt"
	"strings"

	"github.com/glhours/glhours/internal/business"
	"github.com/glhours/glhours/internal/report"
	"github.com/glhours/glhours/internal/timeutil"
)

// Monthly renders the task table with one block per task and a grand
// total recomputed from the surfaced entries.
func Monthly(m report.Monthly) string {
	var b strings.Builder

	if len(m.Tasks) == 0 {
		b.WriteString(dimStyle.Render("Nenhuma hora registrada neste mês."))
		b.WriteString("\n")
		return b.String()
	}

	for _, task := range m.Tasks {
		b.WriteString(titleStyle.Render(task.Name))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(task.WebURL))
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("  %-12s %-10s %s", "Data", "Tempo", "Descrição")))
		b.WriteString("\n")

		for _, e := range task.Entries {
			desc := strings.ReplaceAll(e.Description, "\n", " ")
			b.WriteString(fmt.Sprintf("  %-12s %-10s %s\n", e.Day, timeutil.FormatDuration(e.Seconds), desc))
		}

		b.WriteString(fmt.Sprintf("  %s %s\n\n", dimStyle.Render("Subtotal:"),
			timeutil.FormatDuration(task.TotalSeconds())))
	}

	b.WriteString(totalStyle.Render(
		fmt.Sprintf("Tempo Total Utilizado: %s", timeutil.FormatDuration(m.TotalSeconds))))
	b.WriteString("\n")
	return b.String()
}

// Insights renders the per-day calendar totals.
func Insights(insights []report.Insight) string {
	if len(insights) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Horas por dia"))
	b.WriteString("\n")
	for _, in := range insights {
		b.WriteString(fmt.Sprintf("  %s  %s\n", in.Date, timeutil.FormatDuration(in.Seconds)))
	}
	return b.String()
}

// BusinessHours renders the expected-versus-logged summary box.
func BusinessHours(info business.Info) string {
	status := warningStyle.Render(fmt.Sprintf("faltam %.1fh", info.RemainingHours))
	if info.IsComplete {
		status = successStyle.Render("meta atingida")
	}

	content := fmt.Sprintf("%s\n%d dias úteis × %.1fh = %.1fh esperadas\n%.1fh registradas (%s)",
		titleStyle.Render(info.MonthName),
		info.BusinessDays, info.HoursPerDay, info.TotalHours,
		info.LoggedHours, status)

	return boxStyle.Render(content) + "\n"
}

// Validations renders warnings for tasks missing weight or estimate.
func Validations(vs []report.Validation) string {
	if len(vs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(warningStyle.Render(fmt.Sprintf("%d issue(s) com metadados incompletos:", len(vs))))
	b.WriteString("\n")
	for _, v := range vs {
		var missing []string
		if !v.HasWeight {
			missing = append(missing, "weight")
		}
		if !v.HasTimeEstimate {
			missing = append(missing, "estimate")
		}
		b.WriteString(fmt.Sprintf("  %s — sem %s\n", v.IssueName, strings.Join(missing, ", ")))
		b.WriteString(dimStyle.Render("    " + v.IssueURL))
		b.WriteString("\n")
	}
	return b.String()
}

// Epics renders the epic → sprint → issue tree.
func Epics(epics []report.Epic) string {
	if len(epics) == 0 {
		return dimStyle.Render("Nenhum épico encontrado.") + "\n"
	}

	var b strings.Builder
	for _, e := range epics {
		b.WriteString(titleStyle.Render(e.Title))
		b.WriteString("\n")

		for _, s := range e.Sprints {
			window := ""
			if s.StartDate != nil && s.DueDate != nil {
				window = dimStyle.Render(fmt.Sprintf(" (%s → %s)", *s.StartDate, *s.DueDate))
			}
			b.WriteString(fmt.Sprintf("  %s%s\n", headerStyle.Render(s.Title), window))

			for _, iss := range s.Issues {
				meta := describeIssue(iss)
				b.WriteString(fmt.Sprintf("    %s %s\n", iss.Name, dimStyle.Render(meta)))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func describeIssue(iss report.SprintIssue) string {
	parts := []string{iss.State}
	if iss.Weight != nil {
		parts = append(parts, fmt.Sprintf("peso %d", *iss.Weight))
	}
	if iss.TimeEstimate != nil {
		parts = append(parts, "estimado "+timeutil.FormatDuration(*iss.TimeEstimate))
	}
	if secs := iss.UserSeconds(); secs > 0 {
		parts = append(parts, "suas horas "+timeutil.FormatDuration(secs))
	}
	if iss.TotalSpentTime > 0 {
		parts = append(parts, "total da equipe "+timeutil.FormatDuration(iss.TotalSpentTime))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
