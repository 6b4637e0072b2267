package match

import "github.com/h3nnn4n/colosseum/internal/game"

// fakeGame is a minimal in-package game.Game implementation for engine
// tests — simpler than internal/game/rps, with knobs for each update mode.
type fakeGame struct {
	cfg      game.Config
	maxTicks int
	isolated bool

	agents   []string
	tick     int
	received [][]game.AgentActions
}

func newFakeGame(cfg game.Config, maxTicks int) *fakeGame {
	return &fakeGame{cfg: cfg, maxTicks: maxTicks}
}

func (g *fakeGame) Config() game.Config { return g.cfg }

func (g *fakeGame) AgentToMove() (string, bool) {
	if g.cfg.UpdateMode != game.Alternating || len(g.agents) == 0 {
		return "", false
	}
	return g.agents[g.tick%len(g.agents)], true
}

func (g *fakeGame) RegisterAgent(id string) {
	for _, a := range g.agents {
		if a == id {
			return
		}
	}
	g.agents = append(g.agents, id)
}

func (g *fakeGame) State() map[string]any {
	state := map[string]any{"tick": g.tick}
	if g.isolated {
		sba := map[string]any{}
		for i, id := range g.agents {
			sba[id] = map[string]any{"k": i + 1}
		}
		state["state_by_agent"] = sba
	}
	return state
}

func (g *fakeGame) Update(agentActions []game.AgentActions) {
	g.received = append(g.received, agentActions)
	g.tick++
}

func (g *fakeGame) Finished() bool { return g.tick >= g.maxTicks }

func (g *fakeGame) Outcome() game.Outcome { return game.Outcome{Termination: "FINISHED"} }

func (g *fakeGame) Scores() map[string]float64 {
	out := make(map[string]float64, len(g.agents))
	for i, id := range g.agents {
		out[id] = float64(len(g.agents) - i)
	}
	return out
}
