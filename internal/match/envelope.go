package match

import "github.com/h3nnn4n/colosseum/internal/game"

// agentReply is the agent-to-engine envelope. Every field is optional —
// which ones matter depends on which request triggered the reply.
type agentReply struct {
	AgentID      string             `json:"agent_id,omitempty"`
	AgentName    string             `json:"agent_name,omitempty"`
	AgentVersion string             `json:"agent_version,omitempty"`
	Pong         any                `json:"pong,omitempty"`
	Actions      []game.AgentAction `json:"actions,omitempty"`
}

func stopRequest(reason string) map[string]any {
	return map[string]any{"stop": map[string]string{"reason": reason}}
}

func setAgentIDRequest(id string) map[string]any {
	return map[string]any{"set_agent_id": id}
}

func pingRequest(nonce any) map[string]any {
	return map[string]any{"ping": nonce}
}

func configRequest(cfg game.Config) map[string]any {
	return map[string]any{"config": cfg}
}
