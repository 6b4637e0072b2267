package spawn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AgentChannel selects how the spawner talks to an agent.
type AgentChannel string

const (
	// ChannelStdio runs the entry point as a native child process and
	// exchanges the wire protocol over its stdin/stdout. Default.
	ChannelStdio AgentChannel = "STDIO"

	// ChannelHTTP runs the entry point inside a container via
	// ContainerStarter, which bridges stdio to an HTTP endpoint.
	ChannelHTTP AgentChannel = "HTTP"
)

// Manifest is the optional manifest.json sitting beside an agent's entry
// point, recognized keys per the process manifest contract.
type Manifest struct {
	AgentChannel AgentChannel `json:"agent_channel"`
}

func manifestPath(entryPath string) string {
	return filepath.Join(filepath.Dir(entryPath), "manifest.json")
}

// readManifest loads the manifest beside entryPath, defaulting to STDIO
// when the file is absent or omits agent_channel.
func readManifest(entryPath string) (Manifest, error) {
	m := Manifest{AgentChannel: ChannelStdio}

	data, err := os.ReadFile(manifestPath(entryPath))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, fmt.Errorf("spawn: reading manifest for %s: %w", entryPath, err)
	}

	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("spawn: parsing manifest for %s: %w", entryPath, err)
	}
	if m.AgentChannel == "" {
		m.AgentChannel = ChannelStdio
	}
	return m, nil
}
