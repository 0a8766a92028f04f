// Package bridge talks to the Node-based CLOB executor over a one-shot
// JSON request/response exchange on the child process's standard streams.
package bridge

import (
	"context"
	"encoding/json"
)

// Request is one bridge invocation. One request = one process; there is no
// persistent session.
type Request struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

// Response is the structured result of an invocation. Exactly one of Data
// and Err is meaningful, per Success. Transport failures are represented
// here too — Invoke never returns a Go error.
type Response struct {
	Success bool
	Data    map[string]any
	Err     string
}

// Invoker is the port the orchestrator depends on; tests substitute a fake
// transport returning canned responses.
type Invoker interface {
	Invoke(ctx context.Context, action string, payload map[string]any) Response
}

// Failure builds a transport-failure response.
func Failure(msg string) Response {
	return Response{Success: false, Err: msg}
}

// fromDocument wraps a parsed bridge stdout document. The document is kept
// verbatim so callers see exactly what the executor produced.
func fromDocument(doc map[string]any) Response {
	resp := Response{Success: true, Data: doc}
	if v, ok := doc["success"].(bool); ok {
		resp.Success = v
	}
	if !resp.Success {
		if e, ok := doc["error"].(string); ok {
			resp.Err = e
		}
	}
	return resp
}

// MarshalJSON re-emits the executor document unchanged when one exists;
// synthesized failures take the canonical {"success":false,"error":...}
// shape.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Data != nil {
		return json.Marshal(r.Data)
	}
	doc := map[string]any{"success": r.Success}
	if r.Err != "" {
		doc["error"] = r.Err
	}
	return json.Marshal(doc)
}
