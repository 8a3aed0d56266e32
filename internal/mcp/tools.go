package mcp

import (
	"context"

	"pulse-mcp/internal/performance"
	"pulse-mcp/internal/visuals"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type projectMetricsInput struct {
	ProjectID    string `json:"projectId" jsonschema:"identifier of the project"`
	ForceRefresh bool   `json:"forceRefresh,omitempty" jsonschema:"bypass the cache and fetch from the backend"`
}

type invalidateInput struct{}

func (s *Server) registerTools(server *sdkmcp.Server) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name: "get_projects_performance",
		Description: "Portfolio performance report: per-project completion, time efficiency, risk and utilization, " +
			"aggregated KPIs, chart data and recommendations. Optional filters: projectId, dateRange [from, to], forceRefresh.",
	}, s.handleGetProjectsPerformance)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project_metrics",
		Description: "Performance metrics for a single project. Fails if the backend does not know the project.",
	}, s.handleGetProjectMetrics)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recommendations",
		Description: "Advisory recommendations with the KPIs they are based on. Accepts the same filters as get_projects_performance.",
	}, s.handleGetRecommendations)

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "invalidate_cache",
		Description: "Expire cached backend data so the next request fetches fresh projects and tasks.",
	}, s.handleInvalidateCache)
}

func (s *Server) handleGetProjectsPerformance(ctx context.Context, _ *sdkmcp.CallToolRequest, in performance.Filters) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.service.GetProjectsPerformance(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	res := map[string]any{
		"report": report,
		"_guidance": []string{
			"completionRate, timeEfficiency, riskLevel and resourceUtilization are percentages in [0, 100].",
			"timeEfficiency is 0 for projects without both start and end dates; it does not mean the project failed.",
			"Check 'source' and 'warnings' before drawing conclusions: stale-cache and default mean the backend was unreachable.",
		},
	}
	s.attachCharts(res, report)
	return textResult(res)
}

func (s *Server) handleGetProjectMetrics(ctx context.Context, _ *sdkmcp.CallToolRequest, in projectMetricsInput) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.service.GetProjectMetrics(ctx, in.ProjectID, in.ForceRefresh)
	if err != nil {
		return nil, nil, mapError(err, report)
	}

	res := map[string]any{
		"project":         report.Projects[0],
		"source":          report.Source,
		"recommendations": report.Recommendations,
	}
	if len(report.Warnings) > 0 {
		res["warnings"] = report.Warnings
	}
	s.attachCharts(res, report)
	return textResult(res)
}

func (s *Server) handleGetRecommendations(ctx context.Context, _ *sdkmcp.CallToolRequest, in performance.Filters) (*sdkmcp.CallToolResult, any, error) {
	report, err := s.service.GetProjectsPerformance(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	res := map[string]any{
		"recommendations": report.Recommendations,
		"kpis":            report.KPIs,
		"source":          report.Source,
	}
	if len(report.Warnings) > 0 {
		res["warnings"] = report.Warnings
	}
	return textResult(res)
}

func (s *Server) handleInvalidateCache(_ context.Context, _ *sdkmcp.CallToolRequest, _ invalidateInput) (*sdkmcp.CallToolResult, any, error) {
	s.service.Invalidate()
	return textResult(map[string]any{
		"invalidated": true,
		"message":     "Cached data expired; the next request will fetch from the backend.",
	})
}

func (s *Server) attachCharts(res map[string]any, report *performance.Report) {
	if !s.enableMermaidCharts {
		return
	}
	if c := visuals.GeneratePerformanceChart(report.Charts.Performance); c != "" {
		res["visual_performance"] = c
	}
	if c := visuals.GenerateStatusPie(report.Charts.StatusDistribution); c != "" {
		res["visual_status_distribution"] = c
	}
	if c := visuals.GenerateRiskChart(report.Charts.Performance); c != "" {
		res["visual_risk"] = c
	}
}
