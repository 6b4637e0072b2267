package spawn

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// echoAgentScript is a minimal native agent: it echoes its assigned id
// (read from the COLOSSEUM_AGENT_ID env var NativeStarter sets) on
// set_agent_id, pongs on ping, acks config, and exits cleanly on stop.
// Written out fresh by each test (with the executable bit set) rather
// than checked in as a testdata fixture, so the executable bit survives
// any checkout.
const echoAgentScript = `#!/bin/sh
while IFS= read -r line; do
  case "$line" in
    *set_agent_id*) printf '{"agent_id":"%s","agent_name":"echo","agent_version":"1.0"}\n' "$COLOSSEUM_AGENT_ID" ;;
    *ping*)         printf '{"pong":"x"}\n' ;;
    *config*)       printf '{}\n' ;;
    *stop*)         exit 0 ;;
    *)              printf '{"agent_id":"%s","actions":[{"action":"noop"}]}\n' "$COLOSSEUM_AGENT_ID" ;;
  esac
done
`

func writeEchoAgentScript(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("native shell-script fixtures require a POSIX shell")
	}
	path := filepath.Join(dir, "echo_agent.sh")
	if err := os.WriteFile(path, []byte(echoAgentScript), 0o755); err != nil {
		t.Fatalf("writing agent fixture: %v", err)
	}
	return path
}

// TestNativeStarterEndToEnd exercises the real NativeStarter/Process/
// wire.Channel path against an actual OS child process, not a fake. A
// shell script is a perfectly valid native agent entry point, and using
// one keeps the suite free of compiled fixture binaries.
func TestNativeStarterEndToEnd(t *testing.T) {
	dir := t.TempDir()
	entry := writeEchoAgentScript(t, dir)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	proc, err := NativeStarter(ctx, entry, "agent-x")
	if err != nil {
		t.Fatalf("NativeStarter: %v", err)
	}
	if proc.PID() <= 0 {
		t.Fatalf("PID = %d, want > 0", proc.PID())
	}

	ch := proc.Channel()
	deadline := time.Now().Add(2 * time.Second)

	if err := ch.Send(map[string]any{"set_agent_id": "agent-x"}); err != nil {
		t.Fatalf("Send set_agent_id: %v", err)
	}
	raw, err := ch.Recv(deadline)
	if err != nil {
		t.Fatalf("Recv set_agent_id reply: %v", err)
	}
	var setReply struct {
		AgentID      string `json:"agent_id"`
		AgentName    string `json:"agent_name"`
		AgentVersion string `json:"agent_version"`
	}
	if err := json.Unmarshal(raw, &setReply); err != nil {
		t.Fatalf("unmarshal set_agent_id reply: %v", err)
	}
	if setReply.AgentID != "agent-x" {
		t.Fatalf("agent_id = %q, want agent-x", setReply.AgentID)
	}
	if setReply.AgentName != "echo" || setReply.AgentVersion != "1.0" {
		t.Fatalf("agent_name/version = %q/%q, want echo/1.0", setReply.AgentName, setReply.AgentVersion)
	}

	if err := ch.Send(map[string]any{"ping": 1}); err != nil {
		t.Fatalf("Send ping: %v", err)
	}
	raw, err = ch.Recv(deadline)
	if err != nil {
		t.Fatalf("Recv ping reply: %v", err)
	}
	var pingReply struct {
		Pong any `json:"pong"`
	}
	if err := json.Unmarshal(raw, &pingReply); err != nil {
		t.Fatalf("unmarshal ping reply: %v", err)
	}
	if pingReply.Pong == nil {
		t.Fatal("pong = nil, want non-null")
	}

	if err := ch.Send(map[string]any{"config": map[string]any{"game_name": "fake"}}); err != nil {
		t.Fatalf("Send config: %v", err)
	}
	if _, err := ch.Recv(deadline); err != nil {
		t.Fatalf("Recv config ack: %v", err)
	}

	if err := ch.Send(map[string]any{"tick": 1}); err != nil {
		t.Fatalf("Send state: %v", err)
	}
	raw, err = ch.Recv(deadline)
	if err != nil {
		t.Fatalf("Recv action envelope: %v", err)
	}
	var actionReply struct {
		AgentID string           `json:"agent_id"`
		Actions []map[string]any `json:"actions"`
	}
	if err := json.Unmarshal(raw, &actionReply); err != nil {
		t.Fatalf("unmarshal action envelope: %v", err)
	}
	if len(actionReply.Actions) != 1 || actionReply.Actions[0]["action"] != "noop" {
		t.Fatalf("actions = %+v, want one noop action", actionReply.Actions)
	}

	if err := ch.Send(map[string]any{"stop": map[string]any{"reason": "test complete"}}); err != nil {
		t.Fatalf("Send stop: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := proc.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
