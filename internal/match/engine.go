package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/h3nnn4n/colosseum/internal/game"
)

// Engine drives one match: the start phase, the tick loop, and the stop
// phase. It is single-threaded per match — ticks are strictly sequential
// and agent exchanges within a SIMULTANEOUS tick are serialized — so
// multiple Engines may run concurrently with no shared mutable state.
type Engine struct {
	game        game.Game
	supervisors []*Supervisor
	cfg         game.Config
	journal     *Journal
	log         *slog.Logger

	tickNum int
}

// NewEngine builds an Engine for one match. supervisors must already be
// spawned (their Process started) but not yet sent set_agent_id.
func NewEngine(g game.Game, supervisors []*Supervisor, cfg game.Config, journal *Journal, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		game:        g,
		supervisors: supervisors,
		cfg:         cfg,
		journal:     journal,
		log:         log,
	}
}

// Run executes the full match: start, tick loop, stop. It returns a
// MatchResult on anything but an engine-level invariant violation or a
// cancelled ctx, which instead propagate as an error with no result — the
// match is aborted without a recorded outcome, per the engine error
// handling policy.
func (e *Engine) Run(ctx context.Context) (*MatchResult, error) {
	e.start()

	for !e.anyTainted() && !e.game.Finished() {
		if ctx.Err() != nil {
			e.cleanupOnAbort("context cancelled")
			return nil, ctx.Err()
		}
		if err := e.tick(); err != nil {
			e.cleanupOnAbort("engine error")
			return nil, err
		}
	}

	return e.finish(), nil
}

// start runs each agent through set_agent_id, registration, ping, and
// config in sequence. A failure at any step taints that agent (via the
// supervisor) and the loop moves on to the next agent; whether any ticks
// run at all is decided by the tick loop's own anyTainted guard.
func (e *Engine) start() {
	for _, sup := range e.supervisors {
		if err := sup.Start(); err != nil {
			e.log.Warn("agent failed to start", "agent_id", sup.ID(), "error", err)
			continue
		}
		e.game.RegisterAgent(sup.ID())

		if err := sup.Ping(); err != nil {
			e.log.Warn("agent failed to ack ping", "agent_id", sup.ID(), "error", err)
			continue
		}
		if err := sup.SetConfig(e.cfg); err != nil {
			e.log.Warn("agent failed to ack config", "agent_id", sup.ID(), "error", err)
			continue
		}
	}
}

func (e *Engine) anyTainted() bool {
	for _, sup := range e.supervisors {
		if sup.Record().Tainted {
			return true
		}
	}
	return false
}

// activeSupervisors returns supervisors not yet tainted, in registration
// order. A tainted agent is excluded from further ticks entirely —
// taint monotonicity means it never receives another get_actions request.
func (e *Engine) activeSupervisors() []*Supervisor {
	active := make([]*Supervisor, 0, len(e.supervisors))
	for _, sup := range e.supervisors {
		if !sup.Record().Tainted {
			active = append(active, sup)
		}
	}
	return active
}

func (e *Engine) tick() error {
	e.tickNum++
	epoch := e.tickNum

	state := e.game.State()
	if state == nil {
		state = map[string]any{}
	}
	state["epoch"] = epoch
	state["max_epoch"] = e.cfg.NEpochs

	var agentIDs []string
	for _, sup := range e.activeSupervisors() {
		agentIDs = append(agentIDs, sup.ID())
	}

	var moverID string
	switch e.cfg.UpdateMode {
	case game.Simultaneous, game.Isolated:
	case game.Alternating:
		id, ok := e.game.AgentToMove()
		if !ok {
			return fmt.Errorf("match: ALTERNATING mode requires game.AgentToMove")
		}
		moverID = id
	default:
		return fmt.Errorf("match: unknown update_mode %q", e.cfg.UpdateMode)
	}

	// agent_ids is part of the world state itself, so it must be set
	// before dispatch — agents are sent this same map, not a copy made
	// after the fact.
	state["agent_ids"] = agentIDs

	var records []game.AgentActions

	switch e.cfg.UpdateMode {
	case game.Simultaneous:
		records = e.dispatchSimultaneous(state)
	case game.Alternating:
		records = e.dispatchAlternating(state, moverID)
	case game.Isolated:
		rec, err := e.dispatchIsolated(state)
		if err != nil {
			return err
		}
		records = rec
	}

	if e.journal != nil {
		rec := ReplayRecord{
			Epoch:        epoch,
			MaxEpoch:     e.cfg.NEpochs,
			WorldState:   state,
			AgentActions: records,
			AgentIDs:     agentIDs,
			Config:       e.cfg,
		}
		if err := e.journal.Write(rec); err != nil {
			e.log.Error("failed to journal tick", "epoch", epoch, "error", err)
		}
	}

	e.game.Update(records)
	return nil
}

func (e *Engine) dispatchSimultaneous(state map[string]any) []game.AgentActions {
	var records []game.AgentActions
	for _, sup := range e.activeSupervisors() {
		sup.UpdateState(state)
		records = append(records, game.AgentActions{AgentID: sup.ID(), Actions: sup.GetActions()})
	}
	return records
}

func (e *Engine) dispatchAlternating(state map[string]any, moverID string) []game.AgentActions {
	for _, sup := range e.activeSupervisors() {
		if sup.ID() != moverID {
			continue
		}
		sup.UpdateState(state)
		return []game.AgentActions{{AgentID: sup.ID(), Actions: sup.GetActions()}}
	}

	// The agent to move is tainted or unknown: no agent acts this tick.
	return nil
}

func (e *Engine) dispatchIsolated(state map[string]any) ([]game.AgentActions, error) {
	sba, ok := state["state_by_agent"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("match: ISOLATED mode requires a state_by_agent map in world state")
	}

	common := make(map[string]any, len(state))
	for k, v := range state {
		if k == "state_by_agent" {
			continue
		}
		common[k] = v
	}

	var records []game.AgentActions
	for _, sup := range e.activeSupervisors() {
		payload := make(map[string]any, len(common))
		for k, v := range common {
			payload[k] = v
		}
		if private, ok := sba[sup.ID()].(map[string]any); ok {
			for k, v := range private {
				payload[k] = v
			}
		}

		sup.UpdateState(payload)
		records = append(records, game.AgentActions{AgentID: sup.ID(), Actions: sup.GetActions()})
	}
	return records, nil
}

// finish runs the stop phase and builds the match result.
func (e *Engine) finish() *MatchResult {
	for _, sup := range e.supervisors {
		sup.Shutdown("match complete", e.cfg.StepTimeLimit)
	}

	scores := e.game.Scores()
	results := make([]AgentResult, 0, len(e.supervisors))
	anyTainted := false
	for _, sup := range e.supervisors {
		rec := sup.Record()
		if rec.Tainted {
			anyTainted = true
		}
		results = append(results, AgentResult{
			Name:        rec.Name,
			Version:     rec.Version,
			ID:          rec.ID,
			Path:        rec.Path,
			Score:       scores[rec.ID],
			Tainted:     rec.Tainted,
			TaintReason: rec.TaintReason,
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	var replayPath string
	if e.journal != nil {
		replayPath = e.journal.Path()
		if err := e.journal.Close(); err != nil {
			e.log.Warn("failed to close replay journal", "error", err)
		}
	}

	outcome := e.game.Outcome()
	if anyTainted {
		reason := e.firstTaintReason()
		outcome = game.Outcome{
			Termination: "TAINTED",
			Extra:       map[string]any{"taint_reason": reason},
		}
	}

	return &MatchResult{
		Agents:          results,
		Outcome:         outcome,
		ReplayFile:      replayPath,
		HasTaintedAgent: anyTainted,
	}
}

// firstTaintReason returns the taint reason of the first tainted agent in
// registration order, for the TAINTED outcome's user-visible failure.
func (e *Engine) firstTaintReason() TaintReason {
	for _, sup := range e.supervisors {
		if rec := sup.Record(); rec.Tainted {
			return rec.TaintReason
		}
	}
	return ""
}

// cleanupOnAbort tears down every agent without building a match result,
// used on engine-level errors so no child process is ever left behind.
func (e *Engine) cleanupOnAbort(reason string) {
	for _, sup := range e.supervisors {
		sup.Shutdown(reason, e.cfg.StepTimeLimit)
	}
	if e.journal != nil {
		_ = e.journal.Close()
	}
}
