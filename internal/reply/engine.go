// ABOUTME: Reply engine for simulated agents: rule lookup, phrase pools, think delay
// ABOUTME: Deterministic under a seeded random source for testability

package reply

import (
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/onet/emotia/internal/persona"
)

const (
	defaultMinThinkDelay = 900 * time.Millisecond
	defaultMaxThinkDelay = 2100 * time.Millisecond
)

// Reply is a generated agent response. ThinkDelay is a scheduling directive:
// the caller appends and emits the reply after the delay elapses, it is
// never a blocking wait inside the engine.
type Reply struct {
	Text       string
	ThinkDelay time.Duration
}

// Engine decides what a simulated agent says and how long it pretends to
// think. Reply cannot fail: unknown agents and blank input fall through to
// fixed pools.
type Engine struct {
	mu       sync.Mutex
	pack     *persona.Pack
	rng      *rand.Rand
	minDelay time.Duration
	maxDelay time.Duration
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed fixes the random source, making phrase picks and delays
// deterministic. Used by tests.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithDelayRange overrides the think-delay bounds.
func WithDelayRange(min, max time.Duration) Option {
	return func(e *Engine) {
		if min > 0 {
			e.minDelay = min
		}
		if max >= e.minDelay {
			e.maxDelay = max
		} else {
			e.maxDelay = e.minDelay
		}
	}
}

// NewEngine creates a reply engine over a persona pack. Pass nil logger for
// default.
func NewEngine(pack *persona.Pack, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		pack:     pack,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		minDelay: defaultMinThinkDelay,
		maxDelay: defaultMaxThinkDelay,
		logger:   logger.With("component", "reply"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reply produces the agent's response to one incoming line.
//
// The primary persona answers by keyword rules checked in priority order
// against the lowercased input. Other known personas draw uniformly from
// their phrase pool; unknown agent ids draw from the generic pool.
func (e *Engine) Reply(agentID, incoming string) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	text := e.selectText(agentID, incoming)
	return Reply{
		Text:       text,
		ThinkDelay: e.drawDelay(),
	}
}

func (e *Engine) selectText(agentID, incoming string) string {
	if e.pack.IsPrimary(agentID) {
		lower := strings.ToLower(incoming)
		for _, rule := range e.pack.Rules() {
			for _, kw := range rule.Keywords {
				if strings.Contains(lower, kw) {
					return rule.Reply
				}
			}
		}
		if strings.TrimSpace(lower) == "" {
			return e.pack.EmptyReply()
		}
		return e.pack.PrimaryFallback()
	}

	if per, ok := e.pack.Lookup(agentID); ok && len(per.Phrases) > 0 {
		return per.Phrases[e.rng.Intn(len(per.Phrases))]
	}

	e.logger.Debug("unknown agent, using generic phrases", "agent_id", agentID)
	generic := e.pack.GenericPhrases()
	return generic[e.rng.Intn(len(generic))]
}

// drawDelay picks a think delay uniformly from [minDelay, maxDelay].
func (e *Engine) drawDelay() time.Duration {
	if e.maxDelay <= e.minDelay {
		return e.minDelay
	}
	span := int64(e.maxDelay - e.minDelay)
	return e.minDelay + time.Duration(e.rng.Int63n(span+1))
}
