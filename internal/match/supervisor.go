package match

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"syscall"
	"time"

	"github.com/h3nnn4n/colosseum/internal/game"
	"github.com/h3nnn4n/colosseum/internal/spawn"
	"github.com/h3nnn4n/colosseum/internal/wire"
)

// Supervisor proxies one agent: it owns the agent's channel and process,
// drives the protocol exchanges of the agent wire protocol, and tracks the
// resulting taint state machine. A match is single-threaded per the
// engine's scheduling model, so a Supervisor is written from only one
// goroutine at a time and needs no internal locking.
type Supervisor struct {
	id   string
	path string
	proc spawn.Process
	ch   *wire.Channel

	record *AgentRecord
	time   *TimeAccountant

	maxErrors     int
	startDeadline time.Duration

	lastActions []game.AgentAction

	now func() time.Time
	log *slog.Logger
}

// NewSupervisor builds a Supervisor for an already-spawned process.
func NewSupervisor(id, path string, proc spawn.Process, cfg game.Config, log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		id:            id,
		path:          path,
		proc:          proc,
		ch:            proc.Channel(),
		record:        &AgentRecord{ID: id, Path: path},
		time:          NewTimeAccountant(cfg.StepTimeLimit, cfg.StepLimitPool),
		maxErrors:     DefaultMaxErrors,
		startDeadline: startDeadlineFor(cfg.StepTimeLimit),
		now:           time.Now,
		log:           log,
	}
}

// startDeadlineFor scales the boot deadline with the configured step time
// limit so slow-booting (e.g. containerized) agents aren't penalized by an
// aggressive per-tick budget, with a sane floor for very tight configs.
func startDeadlineFor(stepTimeLimit time.Duration) time.Duration {
	d := stepTimeLimit * 10
	if d < 2*time.Second {
		d = 2 * time.Second
	}
	return d
}

// ID returns the agent's assigned identifier.
func (s *Supervisor) ID() string { return s.id }

// Record returns a snapshot of the agent's current bookkeeping.
func (s *Supervisor) Record() AgentRecord { return *s.record }

// Start spawns the lifecycle handshake: assigns the agent its id and
// verifies it echoes the same id back within the boot deadline.
func (s *Supervisor) Start() error {
	if err := s.ch.Send(setAgentIDRequest(s.id)); err != nil {
		s.recordError(err)
		s.taint(StartupFail)
		return err
	}

	raw, err := s.ch.Recv(s.now().Add(s.startDeadline))
	if err != nil {
		s.recordError(err)
		s.taint(StartupFail)
		return err
	}

	var reply agentReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.recordError(err)
		s.taint(StartupFail)
		return err
	}

	if reply.AgentName != "" {
		s.record.Name = reply.AgentName
	}
	if reply.AgentVersion != "" {
		s.record.Version = reply.AgentVersion
	}

	if reply.AgentID != s.id {
		s.record.IDSet = False
		s.taint(SetAgentIDFail)
		return fmt.Errorf("match: agent %s reported id %q, want %q", s.id, reply.AgentID, s.id)
	}

	s.record.IDSet = True
	s.record.Started = True
	return nil
}

// Ping issues a liveness check; the reply must carry a non-null pong
// within one step time limit.
func (s *Supervisor) Ping() error {
	if err := s.ch.Send(pingRequest(s.now().UnixNano())); err != nil {
		s.recordError(err)
		s.taint(PingFail)
		return err
	}

	raw, err := s.ch.Recv(s.now().Add(s.time.StepTimeLimit()))
	if err != nil {
		s.recordError(err)
		s.taint(PingFail)
		return err
	}

	var reply agentReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.recordError(err)
		s.taint(PingFail)
		return err
	}
	if reply.Pong == nil {
		s.recordError(fmt.Errorf("match: agent %s did not ack ping", s.id))
		s.taint(PingFail)
		return fmt.Errorf("match: agent %s did not ack ping", s.id)
	}

	s.record.Pinged = True
	return nil
}

// SetConfig sends the game configuration; any reply that is one valid
// JSON line acknowledges it — the agent does not have to echo anything in
// particular back.
func (s *Supervisor) SetConfig(cfg game.Config) error {
	if err := s.ch.Send(configRequest(cfg)); err != nil {
		s.recordError(err)
		s.taint(SetConfigFail)
		return err
	}

	if _, err := s.ch.Recv(s.now().Add(s.time.StepTimeLimit())); err != nil {
		s.recordError(err)
		s.taint(SetConfigFail)
		return err
	}

	s.record.Configured = True
	return nil
}

// UpdateState times and performs one state/action exchange. Any failure
// increments the error count and clears the cached action envelope rather
// than propagating — the engine moves on to the next agent and lets the
// taint machine decide.
func (s *Supervisor) UpdateState(state map[string]any) {
	start := s.now()
	s.time.Start(start)

	sendErr := s.ch.Send(state)
	var raw json.RawMessage
	var recvErr error
	if sendErr == nil {
		raw, recvErr = s.ch.Recv(start.Add(s.updateWait()))
	}

	s.time.Stop(s.now())
	if s.time.Overtime() {
		s.taint(Timeout)
	}

	if sendErr != nil {
		s.recordError(sendErr)
		s.lastActions = nil
		return
	}
	if recvErr != nil {
		s.recordError(recvErr)
		s.lastActions = nil
		return
	}

	var reply agentReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		s.recordError(err)
		s.lastActions = nil
		return
	}

	if reply.AgentID != "" && reply.AgentID != s.id {
		s.log.Warn("agent echoed mismatched id, keeping its actions anyway",
			"agent_id", s.id, "echoed", reply.AgentID)
	}

	s.lastActions = reply.Actions
}

// updateWait is how long one state/action exchange may take before the
// read is abandoned. The step time limit is a soft limit: a slow reply
// must still be received as long as the overtime pool can absorb the
// overage, so the wait extends past the limit by the remaining pool,
// plus one more step limit so a reply landing after the pool is spent
// is observed as a pool-negative overrun instead of being cut off at
// exactly zero.
func (s *Supervisor) updateWait() time.Duration {
	pool := s.time.PoolRemaining()
	if pool < 0 {
		pool = 0
	}
	return 2*s.time.StepTimeLimit() + pool
}

// GetActions returns the most recently received action envelope.
func (s *Supervisor) GetActions() []game.AgentAction { return s.lastActions }

// Shutdown asks the agent to stop (no reply awaited), then waits up to
// grace for the process to exit before escalating to SIGTERM and finally
// SIGKILL against the whole process group. It never leaves the child
// running.
func (s *Supervisor) Shutdown(reason string, grace time.Duration) {
	_ = s.ch.Send(stopRequest(reason))

	exited := make(chan struct{})
	go func() {
		_ = s.proc.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-time.After(grace):
		_ = spawn.Kill(s.proc, syscall.SIGTERM)
		select {
		case <-exited:
		case <-time.After(grace):
			_ = spawn.Kill(s.proc, syscall.SIGKILL)
			<-exited
		}
	}

	_ = s.ch.Close()
}

func (s *Supervisor) recordError(err error) {
	s.record.ErrorCount++
	s.log.Warn("agent protocol error", "agent_id", s.id, "error", err)
	if s.record.ErrorCount > s.maxErrors {
		s.taint(TooManyErrors)
	}
}

// taint is a no-op once the record is already tainted: the first
// transition wins and the reason is frozen.
func (s *Supervisor) taint(reason TaintReason) {
	if s.record.Tainted {
		return
	}
	s.record.Tainted = true
	s.record.TaintReason = reason
	s.log.Warn("agent tainted", "agent_id", s.id, "reason", reason)
}
