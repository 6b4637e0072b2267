package match

import "github.com/h3nnn4n/colosseum/internal/game"

// AgentResult is one agent's entry in a MatchResult.
type AgentResult struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	ID          string      `json:"id"`
	Path        string      `json:"path"`
	Score       float64     `json:"score"`
	Tainted     bool        `json:"tainted"`
	TaintReason TaintReason `json:"taint_reason,omitempty"`
}

// MatchResult is the final report for a completed (or aborted) match.
type MatchResult struct {
	Agents          []AgentResult `json:"agents"`
	Outcome         game.Outcome  `json:"outcome"`
	ReplayFile      string        `json:"replay_file"`
	HasTaintedAgent bool          `json:"has_tainted_agent"`
}
