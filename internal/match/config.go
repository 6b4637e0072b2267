package match

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/h3nnn4n/colosseum/internal/game"
)

// AgentSpec names one agent entry to spawn for a match: the entry-point
// path and an optional id override (a generated id is assigned when
// empty).
type AgentSpec struct {
	Path string `yaml:"path"`
	ID   string `yaml:"id,omitempty"`
}

// RunConfig is everything colosseum run needs beyond the game's own
// config: which agents to spawn and where to write the replay.
// Configuration is assembled from three sources in priority order:
//  1. CLI flags (highest priority)
//  2. Config file (colosseum.yaml)
//  3. Defaults (lowest priority)
type RunConfig struct {
	Game       game.Config `yaml:"game"`
	Agents     []AgentSpec `yaml:"agents"`
	ReplayDir  string      `yaml:"replay_dir"`
	SpectateOn string      `yaml:"spectate,omitempty"`
}

const DefaultReplayDir = "replays"

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *RunConfig) ApplyDefaults() {
	c.Game.ApplyDefaults()
	if c.ReplayDir == "" {
		c.ReplayDir = DefaultReplayDir
	}
}

// Validate checks that configuration values are usable. Call after
// ApplyDefaults.
func (c *RunConfig) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if len(c.Agents) == 0 {
		return fmt.Errorf("match: at least one agent is required")
	}
	if c.Game.UpdateMode == game.Alternating && len(c.Agents) < 2 {
		return fmt.Errorf("match: ALTERNATING mode requires at least two agents")
	}
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Path == "" {
			return fmt.Errorf("match: agent entry missing path")
		}
		if a.ID != "" {
			if seen[a.ID] {
				return fmt.Errorf("match: duplicate agent id %q", a.ID)
			}
			seen[a.ID] = true
		}
	}
	if !filepath.IsAbs(c.ReplayDir) {
		abs, err := filepath.Abs(c.ReplayDir)
		if err != nil {
			return fmt.Errorf("match: resolving replay-dir %q: %w", c.ReplayDir, err)
		}
		c.ReplayDir = abs
	}
	return nil
}

// LoadRunConfigFile reads a YAML config file and merges it into into.
// Only zero-valued fields are overwritten — CLI flags, set on into before
// calling this, take precedence. Returns nil if the file does not exist.
func LoadRunConfigFile(path string, into *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("match: reading config file %s: %w", path, err)
	}

	var file RunConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("match: parsing config file %s: %w", path, err)
	}

	mergeRunConfig(&file, into)
	return nil
}

// mergeRunConfig copies non-zero fields from src into dst, but only where
// dst still has the zero value, so CLI flags (already set on dst) always
// win over file values.
func mergeRunConfig(src, dst *RunConfig) {
	if dst.Game.GameName == "" {
		dst.Game.GameName = src.Game.GameName
	}
	if dst.Game.UpdateMode == "" {
		dst.Game.UpdateMode = src.Game.UpdateMode
	}
	if dst.Game.NEpochs == 0 {
		dst.Game.NEpochs = src.Game.NEpochs
	}
	if dst.Game.StepTimeLimit == 0 {
		dst.Game.StepTimeLimit = src.Game.StepTimeLimit
	}
	if dst.Game.StepLimitPool == 0 {
		dst.Game.StepLimitPool = src.Game.StepLimitPool
	}
	if len(dst.Game.Extra) == 0 {
		dst.Game.Extra = src.Game.Extra
	}
	if len(dst.Agents) == 0 {
		dst.Agents = src.Agents
	}
	if dst.ReplayDir == "" {
		dst.ReplayDir = src.ReplayDir
	}
	if dst.SpectateOn == "" {
		dst.SpectateOn = src.SpectateOn
	}
}
