package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxLoggedPayload bounds payloads in debug logs; reports can be large.
const maxLoggedPayload = 2048

func trafficLoggingMiddleware(direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if zerolog.GlobalLevel() > zerolog.DebugLevel {
				return next(ctx, method, req)
			}

			start := time.Now()
			log.Debug().
				Str("direction", direction).
				Str("method", method).
				Str("params", formatPayload(safeParams(req))).
				Msg("mcp request")

			result, err := next(ctx, method, req)
			if !strings.HasPrefix(method, "notifications/") {
				evt := log.Debug().
					Str("direction", direction).
					Str("method", method).
					Dur("duration", time.Since(start)).
					Str("result", formatPayload(result))
				if err != nil {
					evt = evt.Err(err)
				}
				evt.Msg("mcp response")
			}
			return result, err
		}
	}
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return string(data[:maxLoggedPayload]) + "...(truncated)"
	}
	return string(data)
}
