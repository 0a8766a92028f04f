package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/GoPolymarket/polyexec/internal/pkg/metrics"
)

const (
	DefaultRuntime = "node"
	DefaultScript  = "scripts/clob_bridge.mjs"
	DefaultTimeout = 30 * time.Second

	errRuntimeMissing  = "Node.js is required for CLOB execution. Install Node.js >=18."
	errBridgeFailed    = "CLOB bridge failed"
	errInvalidResponse = "Invalid response from CLOB bridge"
	errTimeout         = "timeout"
)

// Client spawns the bridge executor once per invocation. Each call owns its
// process exclusively; the wait is bounded by timeout so an unresponsive
// executor cannot hang order submission.
type Client struct {
	runtime string
	script  string
	timeout time.Duration
}

func NewClient(runtime, script string, timeout time.Duration) *Client {
	if runtime == "" {
		runtime = DefaultRuntime
	}
	if script == "" {
		script = DefaultScript
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{runtime: runtime, script: script, timeout: timeout}
}

func (c *Client) Invoke(ctx context.Context, action string, payload map[string]any) Response {
	start := time.Now()
	resp := c.invoke(ctx, action, payload)

	status := "ok"
	if !resp.Success {
		status = "error"
	}
	metrics.BridgeInvocations.WithLabelValues(action, status).Inc()
	metrics.BridgeDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	return resp
}

func (c *Client) invoke(ctx context.Context, action string, payload map[string]any) Response {
	runtimePath, err := exec.LookPath(c.runtime)
	if err != nil {
		return Failure(errRuntimeMissing)
	}

	script := c.scriptPath()
	if _, err := os.Stat(script); err != nil {
		return Failure(fmt.Sprintf("CLOB bridge script not found at %s", script))
	}

	body, err := json.Marshal(Request{Action: action, Payload: payload})
	if err != nil {
		return Failure(fmt.Sprintf("failed to encode bridge request: %v", err))
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// exec.Cmd drains stdout/stderr concurrently with the stdin write, so a
	// chatty executor cannot deadlock on full OS pipe buffers. Stdin is
	// closed after the single request document to signal end-of-input.
	cmd := exec.CommandContext(runCtx, runtimePath, script)
	cmd.Stdin = bytes.NewReader(body)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Failure(errTimeout)
	}
	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			msg = errBridgeFailed
		}
		return Failure(msg)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return Failure(errInvalidResponse)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		return Failure(errInvalidResponse)
	}
	return fromDocument(doc)
}

// scriptPath resolves the co-located bridge artifact. Relative paths are
// anchored at the executable's directory first so deployments that run the
// binary from elsewhere still find scripts/clob_bridge.mjs.
func (c *Client) scriptPath() string {
	if filepath.IsAbs(c.script) {
		return c.script
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), c.script)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return c.script
}
