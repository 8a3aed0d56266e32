package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"pulse-mcp/internal/performance"
	"pulse-mcp/internal/visuals"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	openRangeStart = "0001-01-01"
	openRangeEnd   = "9999-12-31"
)

var reportOpts struct {
	projectID string
	from      string
	to        string
	refresh   bool
	format    string
	open      bool
	charts    bool
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a performance report",
	Long: `Fetches projects and tasks, computes the performance report and prints it as
JSON or Markdown, or writes a standalone HTML dashboard.`,
	Example: `  pulse-mcp report --format markdown
  pulse-mcp report --project 42 --from 2026-01-01 --to 2026-06-30
  pulse-mcp report --format html --open`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filters := performance.Filters{
			ProjectID:    reportOpts.projectID,
			ForceRefresh: reportOpts.refresh,
		}
		if reportOpts.from != "" || reportOpts.to != "" {
			from, to := reportOpts.from, reportOpts.to
			// A single bound leaves the other side open.
			if from == "" {
				from = openRangeStart
			}
			if to == "" {
				to = openRangeEnd
			}
			filters.DateRange = []string{from, to}
		}

		svc, closeStore := newService(ctx, cfg)
		defer closeStore()

		report, err := svc.GetProjectsPerformance(ctx, filters)
		if err != nil {
			return err
		}
		// Late-status writes run in the background; let them finish.
		svc.Wait()

		charts := reportOpts.charts || cfg.EnableMermaidCharts
		out := cmd.OutOrStdout()

		switch reportOpts.format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		case "markdown", "md":
			_, err := fmt.Fprint(out, visuals.RenderMarkdown(report, charts))
			return err
		case "html":
			return writeHTML(cmd, report, charts)
		default:
			return fmt.Errorf("unknown format %q: expected json, markdown or html", reportOpts.format)
		}
	},
}

func writeHTML(cmd *cobra.Command, report *performance.Report, charts bool) error {
	page, err := visuals.RenderHTML(report, charts)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.DataPath, "reports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("report-%s.html", report.ID))
	if err := os.WriteFile(path, page, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)

	if reportOpts.open {
		if err := browser.OpenFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Could not open the report in a browser")
		}
	}
	return nil
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportOpts.projectID, "project", "p", "", "only report on this project ID")
	f.StringVar(&reportOpts.from, "from", "", "keep projects whose schedule overlaps this start date (YYYY-MM-DD)")
	f.StringVar(&reportOpts.to, "to", "", "keep projects whose schedule overlaps this end date (YYYY-MM-DD)")
	f.BoolVar(&reportOpts.refresh, "refresh", false, "bypass the cache")
	f.StringVarP(&reportOpts.format, "format", "f", "json", "output format: json, markdown or html")
	f.BoolVar(&reportOpts.open, "open", false, "open the HTML report in the default browser")
	f.BoolVar(&reportOpts.charts, "charts", false, "include Mermaid charts even when ENABLE_MERMAID_CHARTS is off")
	rootCmd.AddCommand(reportCmd)
}
