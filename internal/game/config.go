// Package game defines the contract the match engine consumes from a
// concrete game implementation. Concrete rules (board physics, chess move
// validation, and so on) live outside this package; internal/game/rps is a
// small reference implementation used for tests and CLI demos.
package game

import (
	"encoding/json"
	"time"

	"gopkg.in/yaml.v3"
)

// UpdateMode governs which agents act each tick.
type UpdateMode string

const (
	Simultaneous UpdateMode = "SIMULTANEOUS"
	Alternating  UpdateMode = "ALTERNATING"
	Isolated     UpdateMode = "ISOLATED"
)

// Config is the immutable game configuration bag: the fields the engine
// itself needs (update mode, timing policy) plus any game-specific fields,
// which pass through unchanged to agents and to the replay.
type Config struct {
	GameName      string        `json:"game_name" yaml:"game_name"`
	UpdateMode    UpdateMode    `json:"update_mode" yaml:"update_mode"`
	NEpochs       int           `json:"n_epochs,omitempty" yaml:"n_epochs,omitempty"`
	StepTimeLimit time.Duration `json:"step_time_limit" yaml:"step_time_limit"`
	StepLimitPool time.Duration `json:"step_limit_pool" yaml:"step_limit_pool"`

	// Extra holds game-specific fields not known to the engine. They are
	// merged back in on marshal and forwarded unchanged to agents and the
	// replay journal.
	Extra map[string]any `json:"-" yaml:"-"`
}

var configKnownFields = map[string]bool{
	"game_name":       true,
	"update_mode":     true,
	"n_epochs":        true,
	"step_time_limit": true,
	"step_limit_pool": true,
}

// MarshalJSON flattens Extra alongside the known fields, the same
// alias-and-merge trick Outcome.MarshalJSON uses.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if configKnownFields[k] {
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

// UnmarshalJSON splits the known fields out and collects everything else
// into Extra.
func (c *Config) UnmarshalJSON(data []byte) error {
	type alias Config
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = Config(aux)

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	extra := make(map[string]any)
	for k, raw := range all {
		if configKnownFields[k] {
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		c.Extra = extra
	}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for config files: known fields are
// decoded directly, everything else lands in Extra.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type alias Config
	var aux alias
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*c = Config(aux)

	var all map[string]any
	if err := value.Decode(&all); err != nil {
		return err
	}
	extra := make(map[string]any)
	for k, v := range all {
		if configKnownFields[k] {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		c.Extra = extra
	}
	return nil
}

// ApplyDefaults fills zero-valued fields with sensible defaults, following
// the same precedence pattern used for run configuration: values already
// set by the caller (from a file or flags) are never overwritten.
func (c *Config) ApplyDefaults() {
	if c.UpdateMode == "" {
		c.UpdateMode = Simultaneous
	}
	if c.StepTimeLimit == 0 {
		c.StepTimeLimit = 500 * time.Millisecond
	}
	if c.StepLimitPool == 0 {
		c.StepLimitPool = 10 * time.Second
	}
}

// Validate reports a descriptive error for an unusable configuration.
func (c Config) Validate() error {
	switch c.UpdateMode {
	case Simultaneous, Alternating, Isolated:
	default:
		return &InvalidConfigError{Field: "update_mode", Reason: "must be one of SIMULTANEOUS, ALTERNATING, ISOLATED"}
	}
	if c.GameName == "" {
		return &InvalidConfigError{Field: "game_name", Reason: "must not be empty"}
	}
	if c.StepTimeLimit <= 0 {
		return &InvalidConfigError{Field: "step_time_limit", Reason: "must be positive"}
	}
	if c.StepLimitPool <= 0 {
		return &InvalidConfigError{Field: "step_limit_pool", Reason: "must be positive"}
	}
	return nil
}

// InvalidConfigError reports a single invalid Config field.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "game: invalid " + e.Field + ": " + e.Reason
}
