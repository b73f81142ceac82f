// Package format renders AI job responses as user-facing chat text.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/readmoa/moachat/schema"
)

// JobMessage builds the display text for a completed AI job. Parts appear in
// a fixed order, each only when its underlying data is present, joined by
// blank lines: the command/status header, the payload (or the insufficient-
// context fallback), the job id, and the latency. Deterministic for
// deterministic input.
func JobMessage(cmd schema.AICommand, resp schema.JobResponse) string {
	parts := []string{fmt.Sprintf("[%s] status: %s", cmd, resp.Status)}

	if line := payloadLine(resp.Payload); line != "" {
		parts = append(parts, line)
	}
	if resp.JobID != "" {
		parts = append(parts, fmt.Sprintf("job id: %s", resp.JobID))
	}
	if resp.LatencyMs > 0 {
		parts = append(parts, fmt.Sprintf("latency: %dms", resp.LatencyMs))
	}
	return strings.Join(parts, "\n\n")
}

func payloadLine(payload *schema.JobPayload) string {
	if payload == nil {
		return ""
	}
	if payload.Fallback {
		if payload.Reason != "" {
			return fmt.Sprintf("context insufficient (%s)", payload.Reason)
		}
		return "context insufficient"
	}
	if payload.Summary != "" {
		return payload.Summary
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Raw) > 0 {
		return indentJSON(payload.Raw)
	}
	return ""
}

// indentJSON pretty-prints raw payload bytes; unparseable bytes pass through
// unchanged so the formatter never fails.
func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
