package visuals

import (
	"fmt"
	"strings"
	"time"

	"pulse-mcp/internal/performance"
	"pulse-mcp/internal/stats"
)

// RenderMarkdown formats a report as a Markdown document: KPI summary,
// per-project table, recommendations and, when charts is set, Mermaid
// diagrams.
func RenderMarkdown(r *performance.Report, charts bool) string {
	var sb strings.Builder

	sb.WriteString("# Project Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated %s from %s data", r.GeneratedAt.Format(time.RFC1123), r.Source))
	if r.DataFetchedAt != nil {
		sb.WriteString(fmt.Sprintf(" (fetched %s)", r.DataFetchedAt.Format(time.RFC1123)))
	}
	sb.WriteString(".\n\n")

	for _, w := range r.Warnings {
		sb.WriteString(fmt.Sprintf("> **Warning:** %s\n\n", w))
	}

	k := r.KPIs
	sb.WriteString("## Key indicators\n\n")
	sb.WriteString("| Indicator | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Projects | %d |\n", k.TotalProjects))
	sb.WriteString(fmt.Sprintf("| Average completion | %d%% |\n", k.AverageCompletionRate))
	sb.WriteString(fmt.Sprintf("| Median completion | %.1f%% |\n", k.MedianCompletionRate))
	sb.WriteString(fmt.Sprintf("| Average time efficiency | %d%% |\n", k.AverageTimeEfficiency))
	sb.WriteString(fmt.Sprintf("| Tasks completed | %d / %d |\n", k.CompletedTasks, k.TotalTasks))
	sb.WriteString(fmt.Sprintf("| Overdue tasks | %d |\n", k.TotalRisks))
	sb.WriteString(fmt.Sprintf("| Projects at risk | %d |\n\n", k.ProjectsAtRisk))

	if len(r.Projects) > 0 {
		sb.WriteString("## Projects\n\n")
		sb.WriteString("| Project | Status | Completion | Efficiency | Risk | Utilization | Tasks | Late | Planned (d) | Actual (d) |\n")
		sb.WriteString("|---|---|---|---|---|---|---|---|---|---|\n")
		for _, p := range r.Projects {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d%% | %s | %d%% | %d%% | %d/%d | %d | %s | %s |\n",
				escapeCell(p.Name), p.Status, p.CompletionRate, efficiencyCell(p),
				p.RiskLevel, p.ResourceUtilization, p.CompletedTaskCount, p.TaskCount,
				p.LateTaskCount, daysCell(p.PlannedDuration), daysCell(p.ActualDuration)))
		}
		sb.WriteString("\n")
	}

	if charts {
		if c := GeneratePerformanceChart(r.Charts.Performance); c != "" {
			sb.WriteString("## Completion and efficiency\n\n" + c + "\n\n")
		}
		if c := GenerateStatusPie(r.Charts.StatusDistribution); c != "" {
			sb.WriteString("## Status distribution\n\n" + c + "\n\n")
		}
		if c := GenerateRiskChart(r.Charts.Performance); c != "" {
			sb.WriteString("## Risk\n\n" + c + "\n\n")
		}
	}

	sb.WriteString("## Recommendations\n\n")
	for _, rec := range r.Recommendations {
		sb.WriteString(fmt.Sprintf("- %s **%s**: %s\n", recommendationIcon(rec.Type), rec.Title, rec.Message))
	}
	return sb.String()
}

func recommendationIcon(t stats.RecommendationType) string {
	switch t {
	case stats.RecommendationWarning:
		return "⚠️"
	case stats.RecommendationSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// Unknown schedules show as a dash rather than 0.
func efficiencyCell(p stats.PerformanceMetrics) string {
	if p.PlannedDuration == 0 {
		return "-"
	}
	return fmt.Sprintf("%d%%", p.TimeEfficiency)
}

func daysCell(d int) string {
	if d == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", d)
}

func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
