package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRuntime writes an executable shell script standing in for the Node
// binary and returns its path plus a dummy bridge script.
func fakeRuntime(t *testing.T, body string) (runtime, script string) {
	t.Helper()
	dir := t.TempDir()

	runtime = filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(runtime, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	script = filepath.Join(dir, "clob_bridge.mjs")
	require.NoError(t, os.WriteFile(script, []byte("// stub\n"), 0o644))
	return runtime, script
}

func TestInvokeRuntimeMissing(t *testing.T) {
	c := NewClient("definitely-not-a-real-runtime-xyz", "whatever.mjs", time.Second)
	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "Node.js is required for CLOB execution. Install Node.js >=18.", resp.Err)
}

func TestInvokeScriptMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.mjs")
	c := NewClient("/bin/sh", missing, time.Second)
	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "CLOB bridge script not found at "+missing, resp.Err)
}

func TestInvokeSuccess(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; echo '{"success":true,"orderID":"0xabc","status":"live"}'`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", map[string]any{"host": "h"})

	require.True(t, resp.Success)
	assert.Equal(t, "0xabc", resp.Data["orderID"])
	assert.Equal(t, "live", resp.Data["status"])
	assert.Empty(t, resp.Err)
}

func TestInvokeReceivesRequestDocument(t *testing.T) {
	dir := t.TempDir()
	captured := filepath.Join(dir, "captured.json")
	runtime, script := fakeRuntime(t, `cat > `+captured+`; echo '{"success":true}'`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", map[string]any{"chainId": 137})
	require.True(t, resp.Success)

	raw, err := os.ReadFile(captured)
	require.NoError(t, err)
	var req Request
	require.NoError(t, json.Unmarshal(raw, &req))
	assert.Equal(t, "post_order", req.Action)
	assert.Equal(t, float64(137), req.Payload["chainId"])
}

func TestInvokeNonZeroExitUsesStderr(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; echo "bad signature" >&2; exit 1`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "bad signature", resp.Err)
}

func TestInvokeNonZeroExitFallsBackToStdout(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; echo "stdout detail"; exit 3`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "stdout detail", resp.Err)
}

func TestInvokeNonZeroExitSilent(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; exit 1`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "CLOB bridge failed", resp.Err)
}

func TestInvokeInvalidJSON(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; echo "not-json"`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid response from CLOB bridge", resp.Err)
}

func TestInvokeEmptyStdout(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; exit 0`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid response from CLOB bridge", resp.Err)
}

func TestInvokeTimeout(t *testing.T) {
	runtime, script := fakeRuntime(t, `sleep 5`)
	c := NewClient(runtime, script, 200*time.Millisecond)

	start := time.Now()
	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "timeout", resp.Err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestInvokeExecutorReportedFailure(t *testing.T) {
	runtime, script := fakeRuntime(t, `cat >/dev/null; echo '{"success":false,"error":"insufficient balance"}'`)
	c := NewClient(runtime, script, 5*time.Second)

	resp := c.Invoke(context.Background(), "post_order", nil)

	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient balance", resp.Err)
	// the original document stays available to callers
	assert.Equal(t, "insufficient balance", resp.Data["error"])
}

func TestResponseMarshalPreservesDocument(t *testing.T) {
	resp := fromDocument(map[string]any{"success": true, "orderID": "0xabc"})
	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, true, doc["success"])
	assert.Equal(t, "0xabc", doc["orderID"])
}

func TestResponseMarshalSynthesizedFailure(t *testing.T) {
	out, err := json.Marshal(Failure("timeout"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"timeout"}`, string(out))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", "", 0)
	assert.Equal(t, DefaultRuntime, c.runtime)
	assert.Equal(t, DefaultScript, c.script)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
