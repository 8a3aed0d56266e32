package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"pulse-mcp/internal/performance"
	"pulse-mcp/internal/stats"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	metricsDocURI   = "pulse://docs/metrics"
	reportSchemaURI = "pulse://schema/report"
)

var metricsDoc = fmt.Sprintf(`# Performance metrics

All percentages are integers clamped to [0, 100].

## Per project

- **completionRate**: completed tasks / tasks. 0 when the project has no task.
- **riskLevel**: overdue tasks / tasks. A task is overdue when it is not completed and its due date is strictly before now. Tasks without a valid due date are never overdue.
- **plannedDuration**: days from start to end, at least 1.
- **actualDuration**: days from start to now, or to the end date once the project is completed, at least 1.
- **timeEfficiency**: 100 when the project completed within its planned duration, otherwise planned / actual. Projects missing a start or end date have 0 for all three duration fields.
- **resourceUtilization**: open tasks / (team size x %d). The team is the distinct members plus the owner; 0 for an empty team.

## Classification

1. completed: the project status is terminal.
2. at-risk: riskLevel > %d.
3. delayed: the schedule is known and timeEfficiency < %d.
4. in-progress: otherwise.

## Portfolio

- averageCompletionRate and averageTimeEfficiency: rounded means, 0 with no project.
- totalRisks: overdue tasks across projects.
- projectsAtRisk: projects classified at-risk.

## Recommendations

Evaluated in order: projects at risk, average time efficiency below %d, the best project by completion plus efficiency, overdue tasks. When none applies a single generic entry asks for more data.

## Statuses

Completed spellings include done, completed, complete, finished, closed, terminé, terminée, achevé, achevée and fini, in any case and with or without accents.
`, stats.TasksPerMemberTarget, stats.AtRiskThreshold, stats.DelayedThreshold, stats.EfficiencyAdvisory)

func registerResources(server *sdkmcp.Server) {
	server.AddResource(&sdkmcp.Resource{
		URI:         metricsDocURI,
		Name:        "metrics_docs",
		Title:       "Metric definitions",
		Description: "Formulas, thresholds and classification rules behind every number in a report.",
		MIMEType:    "text/markdown",
		Size:        int64(len(metricsDoc)),
	}, func(_ context.Context, _ *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      metricsDocURI,
				MIMEType: "text/markdown",
				Text:     metricsDoc,
			}},
		}, nil
	})

	server.AddResource(&sdkmcp.Resource{
		URI:         reportSchemaURI,
		Name:        "report_schema",
		Title:       "Report JSON schema",
		Description: "JSON schema of the report returned by get_projects_performance.",
		MIMEType:    "application/schema+json",
	}, func(_ context.Context, _ *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		schema, err := reportSchema()
		if err != nil {
			return nil, err
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      reportSchemaURI,
				MIMEType: "application/schema+json",
				Text:     schema,
			}},
		}, nil
	})
}

func reportSchema() (string, error) {
	schema, err := jsonschema.For[performance.Report](nil)
	if err != nil {
		return "", fmt.Errorf("infer report schema: %w", err)
	}
	schema.Title = "Project performance report"
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report schema: %w", err)
	}
	return string(data), nil
}
