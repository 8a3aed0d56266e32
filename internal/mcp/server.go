package mcp

import (
	"context"

	"pulse-mcp/internal/performance"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// PerformanceService is the analytics surface the tools call.
type PerformanceService interface {
	GetProjectsPerformance(ctx context.Context, f performance.Filters) (*performance.Report, error)
	GetProjectMetrics(ctx context.Context, projectID string, forceRefresh bool) (*performance.Report, error)
	Invalidate()
}

// Config contains server configuration.
type Config struct {
	Service             PerformanceService
	EnableMermaidCharts bool
	Version             string
}

// Server holds the state shared by tool handlers.
type Server struct {
	service             PerformanceService
	enableMermaidCharts bool
}

const serverInstructions = `pulse-mcp reports on the health of projects tracked in the project-management backend.

Start with get_projects_performance for the portfolio view (KPIs, per-project metrics, chart data, recommendations).
Use get_project_metrics to drill into one project, get_recommendations for advice only.
Data is cached for five minutes; pass forceRefresh or call invalidate_cache when fresh numbers matter.
The "source" field says whether data came from the network, the cache, a stale cache after a backend failure, or a zeroed default.
Formulas and thresholds: pulse://docs/metrics. Output schema: pulse://schema/report.`

// NewServer creates an MCP server with all tools, resources and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "pulse-mcp",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
	})

	s := &Server{
		service:             cfg.Service,
		enableMermaidCharts: cfg.EnableMermaidCharts,
	}

	server.AddReceivingMiddleware(trafficLoggingMiddleware("inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware("outbound"))

	registerResources(server)
	s.registerTools(server)
	return server
}
