package match

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/h3nnn4n/colosseum/internal/wire"
)

// fakeProcess is an in-process stand-in for spawn.Process, driven by a
// scripted goroutine instead of a real OS child, carrying a wire.Channel
// wired to an in-process "child" goroutine. PID is always 0: spawn.Kill
// no-ops on pid <= 0, so a Shutdown escalation in a test can never
// signal a real process group.
type fakeProcess struct {
	ch     *wire.Channel
	waitCh chan struct{}
}

func (p *fakeProcess) Wait() error            { <-p.waitCh; return nil }
func (p *fakeProcess) PID() int               { return 0 }
func (p *fakeProcess) Channel() *wire.Channel { return p.ch }

// scriptedAgent wires a fakeProcess to a child goroutine running fn, which
// reads lines from childIn and writes replies to childOut. fn is expected
// to run until its input pipe is closed.
type scriptedAgent struct {
	proc     *fakeProcess
	childIn  *bufio.Reader
	childOut io.WriteCloser
	exitOnce sync.Once
}

func newScriptedAgent() *scriptedAgent {
	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	return &scriptedAgent{
		proc: &fakeProcess{
			ch:     wire.NewChannel(stdinW, stdoutR),
			waitCh: make(chan struct{}),
		},
		childIn:  bufio.NewReader(stdinR),
		childOut: stdoutW,
	}
}

// exit unblocks Wait, the way the OS reaping a real child would.
// Idempotent: scripted agents exit themselves on stop, and tests may
// also call this explicitly for agents that were scripted not to.
func (a *scriptedAgent) exit() {
	a.exitOnce.Do(func() { close(a.proc.waitCh) })
}

func (a *scriptedAgent) readLine() (map[string]any, error) {
	line, err := a.childIn.ReadString('\n')
	if err != nil {
		return nil, err
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(line), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (a *scriptedAgent) reply(v map[string]any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.childOut, string(b)+"\n")
	return err
}

func (a *scriptedAgent) replyRaw(s string) error {
	_, err := io.WriteString(a.childOut, s+"\n")
	return err
}

// echoAgent runs a well-behaved agent: it echoes agent_id on
// set_agent_id, pongs on ping, and acks config, then replies with a noop
// action to every world-state message. On stop it exits without replying,
// the way agents are encouraged to.
func echoAgent(a *scriptedAgent, id string, done chan<- struct{}) {
	defer close(done)
	for {
		msg, err := a.readLine()
		if err != nil {
			a.exit()
			return
		}
		switch {
		case msg["set_agent_id"] != nil:
			_ = a.reply(map[string]any{"agent_id": id, "agent_name": "echo", "agent_version": "1.0"})
		case msg["ping"] != nil:
			_ = a.reply(map[string]any{"pong": "x"})
		case msg["config"] != nil:
			_ = a.reply(map[string]any{})
		case msg["stop"] != nil:
			a.exit()
			return
		default:
			_ = a.reply(map[string]any{"agent_id": id, "actions": []map[string]any{{"action": "noop"}}})
		}
	}
}

// capturingAgent behaves like echoAgent but additionally appends every
// world-state message it receives to *captured, so tests can assert on
// exactly what payload the engine sent it.
func capturingAgent(a *scriptedAgent, id string, captured *[]map[string]any, done chan<- struct{}) {
	defer close(done)
	for {
		msg, err := a.readLine()
		if err != nil {
			a.exit()
			return
		}
		switch {
		case msg["set_agent_id"] != nil:
			_ = a.reply(map[string]any{"agent_id": id})
		case msg["ping"] != nil:
			_ = a.reply(map[string]any{"pong": "x"})
		case msg["config"] != nil:
			_ = a.reply(map[string]any{})
		case msg["stop"] != nil:
			a.exit()
			return
		default:
			*captured = append(*captured, msg)
			_ = a.reply(map[string]any{"agent_id": id, "actions": []map[string]any{{"action": "noop"}}})
		}
	}
}
