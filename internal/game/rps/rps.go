// Package rps is a small reference game implementing the internal/game
// contract: an extended rock-paper-scissors-lizard-spock tournament
// between two to four agents, SIMULTANEOUS update mode, fixed round
// count. It exists to give the match engine, the CLI demo command, and
// the test suite something concrete to run — it is not meant to be a
// "real" game.
package rps

import (
	"math/rand"

	"github.com/h3nnn4n/colosseum/internal/game"
)

// Move is one of the five throws.
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
	Lizard   Move = "lizard"
	Spock    Move = "spock"
)

var allMoves = []Move{Rock, Paper, Scissors, Lizard, Spock}

// beats[a][b] is true when a defeats b.
var beats = map[Move]map[Move]bool{
	Rock:     {Scissors: true, Lizard: true},
	Paper:    {Rock: true, Spock: true},
	Scissors: {Paper: true, Lizard: true},
	Lizard:   {Spock: true, Paper: true},
	Spock:    {Rock: true, Scissors: true},
}

// Game implements game.Game.
type Game struct {
	cfg       game.Config
	agentIDs  []string
	scores    map[string]float64
	lastMoves map[string]Move
	tick      int
	rng       *rand.Rand
}

// New builds a Game from cfg, filling in rps-specific defaults for any
// zero-valued fields.
func New(cfg game.Config) *Game {
	cfg.ApplyDefaults()
	if cfg.GameName == "" {
		cfg.GameName = "rps"
	}
	if cfg.NEpochs <= 0 {
		cfg.NEpochs = 10
	}
	return &Game{
		cfg:    cfg,
		scores: make(map[string]float64),
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (g *Game) Config() game.Config { return g.cfg }

// AgentToMove always returns (_, false): rps only runs in SIMULTANEOUS mode.
func (g *Game) AgentToMove() (string, bool) { return "", false }

func (g *Game) RegisterAgent(id string) {
	for _, existing := range g.agentIDs {
		if existing == id {
			return
		}
	}
	g.agentIDs = append(g.agentIDs, id)
	g.scores[id] = 0
}

func (g *Game) State() map[string]any {
	return map[string]any{
		"tick":       g.tick,
		"last_moves": g.lastMoves,
	}
}

func (g *Game) Update(agentActions []game.AgentActions) {
	throws := make(map[string]Move, len(agentActions))
	for _, env := range agentActions {
		for _, a := range env.Actions {
			if mv, ok := parseMove(a); ok {
				throws[env.AgentID] = mv
				break
			}
		}
	}

	moves := make(map[string]Move, len(g.agentIDs))
	for _, id := range g.agentIDs {
		mv, ok := throws[id]
		if !ok {
			// A missing or unparseable throw is replaced by a random
			// move, so the agent isn't systematically advantaged or
			// disadvantaged.
			mv = allMoves[g.rng.Intn(len(allMoves))]
		}
		moves[id] = mv
	}

	for _, a := range g.agentIDs {
		for _, b := range g.agentIDs {
			if a == b {
				continue
			}
			if beats[moves[a]][moves[b]] {
				g.scores[a]++
			}
		}
	}

	g.lastMoves = moves
	g.tick++
}

func parseMove(a game.AgentAction) (Move, bool) {
	raw, ok := a["move"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	mv := Move(s)
	for _, m := range allMoves {
		if m == mv {
			return mv, true
		}
	}
	return "", false
}

func (g *Game) Finished() bool { return g.tick >= g.cfg.NEpochs }

func (g *Game) Outcome() game.Outcome {
	if !g.Finished() {
		return game.Outcome{Termination: "IN_PROGRESS"}
	}

	var winner string
	best := -1.0
	tied := false
	for _, id := range g.agentIDs {
		s := g.scores[id]
		switch {
		case s > best:
			best, winner, tied = s, id, false
		case s == best:
			tied = true
		}
	}
	if tied {
		winner = ""
	}
	return game.Outcome{Termination: "FINISHED", Extra: map[string]any{"winner": winner}}
}

func (g *Game) Scores() map[string]float64 {
	out := make(map[string]float64, len(g.scores))
	for k, v := range g.scores {
		out[k] = v
	}
	return out
}
