package game

import "encoding/json"

// AgentAction is one game-defined action record inside an agent's action
// envelope. It is deliberately an opaque map: the engine and the wire
// channel pass it through without introspecting any key but "action".
type AgentAction map[string]any

// Verb returns the action's "action" key, if present and a string.
func (a AgentAction) Verb() (string, bool) {
	v, ok := a["action"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AgentActions is one agent's action envelope for a single tick, tagged
// with the id of the agent that produced it. An agent may send zero or
// several actions in one envelope, so consumers must attribute actions
// by AgentID, never by position.
type AgentActions struct {
	AgentID string        `json:"agent_id"`
	Actions []AgentAction `json:"actions"`
}

// Outcome is a game's terminal descriptor: a termination reason plus any
// game-specific fields (e.g. a winner id), passed through unchanged.
type Outcome struct {
	Termination string         `json:"termination"`
	Extra       map[string]any `json:"-"`
}

var outcomeKnownFields = map[string]bool{"termination": true}

// MarshalJSON flattens Extra alongside Termination.
func (o Outcome) MarshalJSON() ([]byte, error) {
	type alias Outcome
	base, err := json.Marshal(alias(o))
	if err != nil {
		return nil, err
	}
	if len(o.Extra) == 0 {
		return base, nil
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range o.Extra {
		if outcomeKnownFields[k] {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = b
	}
	return json.Marshal(merged)
}

// Game is the contract the match engine relies on. Concrete rules
// (board physics, move validation, win conditions) live in an
// implementation outside this package.
type Game interface {
	// Config returns the game's configuration bag, including the
	// time-policy fields the engine enforces.
	Config() Config

	// AgentToMove returns the id of the agent that should act this tick.
	// Mandatory for ALTERNATING mode; other modes may return ("", false).
	AgentToMove() (id string, ok bool)

	// RegisterAgent notifies the game that an agent has joined. Idempotent
	// on repeated registration of the same id.
	RegisterAgent(id string)

	// State returns the serializable world state for the next tick. For
	// ISOLATED mode it must include a "state_by_agent" key mapping agent
	// id to that agent's private slice; the engine splits it out.
	State() map[string]any

	// Update consumes the ordered list of per-agent action envelopes
	// collected this tick, one per acting agent in registration order.
	Update(agentActions []AgentActions)

	// Finished reports whether the match should end.
	Finished() bool

	// Outcome returns the terminal descriptor. Only meaningful once
	// Finished reports true or the match is being aborted.
	Outcome() Outcome

	// Scores returns each registered agent's current numeric score.
	Scores() map[string]float64
}
