package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pulse-mcp/internal/performance"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult wraps data as indented JSON text content.
func textResult(data any) (*sdkmcp.CallToolResult, any, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(out)}},
	}, nil, nil
}

// mapError turns service errors into messages an assistant can act on.
// When the backend was unreachable the warnings explain why nothing matched.
func mapError(err error, report *performance.Report) error {
	if errors.Is(err, performance.ErrProjectNotFound) {
		msg := err.Error() + ". Call get_projects_performance to list known project IDs."
		if report != nil && len(report.Warnings) > 0 {
			msg += " Note: " + strings.Join(report.Warnings, "; ")
		}
		return errors.New(msg)
	}
	return err
}
