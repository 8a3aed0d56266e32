package visuals

import (
	"fmt"
	"strings"

	"pulse-mcp/internal/stats"
)

// maxChartProjects keeps x-axis labels readable.
const maxChartProjects = 20

// GeneratePerformanceChart creates a Mermaid xychart-beta with completion as
// bars and time efficiency as a line, one column per project.
func GeneratePerformanceChart(points []stats.ProjectChartPoint) string {
	if len(points) == 0 {
		return ""
	}
	if len(points) > maxChartProjects {
		points = points[:maxChartProjects]
	}

	labels := make([]string, 0, len(points))
	completion := make([]string, 0, len(points))
	efficiency := make([]string, 0, len(points))
	for _, p := range points {
		labels = append(labels, quoteLabel(p.Name))
		completion = append(completion, fmt.Sprintf("%d", p.Completion))
		efficiency = append(efficiency, fmt.Sprintf("%d", p.Efficiency))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Completion (bars) and Time Efficiency (line)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Percent\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(completion, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(efficiency, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateRiskChart creates a Mermaid bar chart of the late-task share per project.
func GenerateRiskChart(points []stats.ProjectChartPoint) string {
	if len(points) == 0 {
		return ""
	}
	if len(points) > maxChartProjects {
		points = points[:maxChartProjects]
	}

	labels := make([]string, 0, len(points))
	risks := make([]string, 0, len(points))
	for _, p := range points {
		labels = append(labels, quoteLabel(p.Name))
		risks = append(risks, fmt.Sprintf("%d", p.Risk))
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Risk Level (% of tasks overdue)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Percent\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(risks, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateStatusPie creates a Mermaid pie chart of project classifications.
// Empty slices are omitted; an all-zero distribution renders nothing.
func GenerateStatusPie(d stats.StatusDistribution) string {
	parts := []struct {
		label string
		value int
	}{
		{"Completed", d.Completed},
		{"In progress", d.InProgress},
		{"Delayed", d.Delayed},
		{"At risk", d.AtRisk},
	}

	var sb strings.Builder
	total := 0
	for _, s := range parts {
		if s.value > 0 {
			sb.WriteString(fmt.Sprintf("    %q : %d\n", s.label, s.value))
			total += s.value
		}
	}
	if total == 0 {
		return ""
	}
	return "```mermaid\npie showData\n    title \"Project Status\"\n" + sb.String() + "```"
}

// quoteLabel makes a project name safe inside a Mermaid axis list.
func quoteLabel(name string) string {
	name = strings.NewReplacer(`"`, "'", "\n", " ", "[", "(", "]", ")").Replace(name)
	if name == "" {
		name = "?"
	}
	return `"` + name + `"`
}
