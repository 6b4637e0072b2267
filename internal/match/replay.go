package match

import "github.com/h3nnn4n/colosseum/internal/game"

// ReplayRecord is one line of the replay journal: everything needed to
// reconstruct and render a single tick. The agent_actions list holds the
// exact per-agent envelopes handed to the game this tick.
type ReplayRecord struct {
	Epoch        int                 `json:"epoch"`
	MaxEpoch     int                 `json:"max_epoch"`
	WorldState   map[string]any      `json:"world_state"`
	AgentActions []game.AgentActions `json:"agent_actions"`
	AgentIDs     []string            `json:"agent_ids"`
	Config       game.Config         `json:"config"`
}
