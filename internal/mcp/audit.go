package mcp

import (
	"fmt"
	"time"
)

// safeValueParams are tool parameters whose values may be logged verbatim.
// Everything else is reduced to "(set)" so file paths stay out of the trace.
var safeValueParams = map[string]bool{
	"symmetric": true,
	"limit":     true,
}

// sanitizeToolParams extracts loggable metadata from tool parameters.
// A "_param_count" key is always included.
func sanitizeToolParams(params map[string]any) map[string]string {
	if params == nil {
		return nil
	}

	result := make(map[string]string, len(params)+1)
	for key, val := range params {
		if safeValueParams[key] {
			result[key] = fmt.Sprintf("%v", val)
		} else if val != "" {
			result[key] = "(set)"
		}
	}
	result["_param_count"] = fmt.Sprintf("%d", len(params))
	return result
}

// auditTool records a tool invocation in the operational log and the event trace.
func (s *Server) auditTool(toolName string, start time.Time, err error, params map[string]any) {
	status := "success"
	event := map[string]any{
		"event":       "tool",
		"tool":        toolName,
		"run_id":      s.runID,
		"duration_ms": time.Since(start).Milliseconds(),
		"params":      sanitizeToolParams(params),
	}
	if err != nil {
		status = "error"
		event["error"] = err.Error()
	}
	event["status"] = status

	s.events.Log(event)
	s.logger.Debug("mcp tool call", "tool", toolName, "status", status, "duration", time.Since(start))
}
