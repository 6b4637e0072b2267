package match

// TaintReason names why an agent was marked unrecoverable. The zero value
// means the agent is not tainted.
type TaintReason string

const (
	StartupFail    TaintReason = "STARTUP_FAIL"
	SetAgentIDFail TaintReason = "SET_AGENT_ID_FAIL"
	PingFail       TaintReason = "PING_FAIL"
	SetConfigFail  TaintReason = "SET_CONFIG_FAIL"
	TooManyErrors  TaintReason = "TOO_MANY_ERRORS"
	Timeout        TaintReason = "TIMEOUT"
)

// DefaultMaxErrors is the default error-count threshold: an agent is
// tainted once its recorded error count exceeds this value.
const DefaultMaxErrors = 10
