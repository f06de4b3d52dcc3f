package syncer

import (
	"fmt"
	"sync"
	"time"
)

// Confirmation outcome states used by the workflow.
const (
	StatePending   = "pending"
	StateConfirmed = "confirmed"
	StateRejected  = "rejected"
	StateExpired   = "expired"
	StateCanceled  = "canceled"
)

// Token identifies one open confirmation.
type Token struct {
	Key string
	t   *tracked
}

type tracked struct {
	mu       sync.Mutex
	state    string
	timer    *time.Timer
	onExpire func()
}

// Workflow is a generic accept/reject-with-timeout primitive. Each key
// has at most one open token; resolution happens exactly once, whether
// it comes from Respond, Cancel or the expiry timer.
type Workflow struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

func NewWorkflow() *Workflow {
	return &Workflow{tokens: make(map[string]*Token)}
}

// Create opens a confirmation for key. onExpire runs at most once, from
// the timer goroutine, only if nothing resolved the token first.
func (w *Workflow) Create(key string, timeout time.Duration, onExpire func()) (*Token, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.tokens[key]; ok {
		return nil, fmt.Errorf("%w: confirmation already open for %s", ErrInvalidState, key)
	}

	tr := &tracked{state: StatePending, onExpire: onExpire}
	token := &Token{Key: key, t: tr}
	tr.timer = time.AfterFunc(timeout, func() {
		w.expire(token)
	})
	w.tokens[key] = token
	return token, nil
}

// Respond settles the token with outcome and returns the state the
// token held before the call. A caller seeing a non-pending previous
// state lost the race; the terminal transition already happened.
func (w *Workflow) Respond(token *Token, outcome string) (string, error) {
	if outcome != StateConfirmed && outcome != StateRejected && outcome != StateCanceled {
		return "", fmt.Errorf("invalid confirmation outcome %q", outcome)
	}

	token.t.mu.Lock()
	prev := token.t.state
	if prev != StatePending {
		token.t.mu.Unlock()
		return prev, nil
	}
	token.t.state = outcome
	token.t.timer.Stop()
	token.t.mu.Unlock()

	w.drop(token.Key)
	return prev, nil
}

// Open returns the open token for key, if any.
func (w *Workflow) Open(key string) (*Token, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	token, ok := w.tokens[key]
	return token, ok
}

// expire is the timer path. It only wins if the token is still pending.
func (w *Workflow) expire(token *Token) {
	token.t.mu.Lock()
	if token.t.state != StatePending {
		token.t.mu.Unlock()
		return
	}
	token.t.state = StateExpired
	onExpire := token.t.onExpire
	token.t.mu.Unlock()

	w.drop(token.Key)
	if onExpire != nil {
		onExpire()
	}
}

// drop removes the token entry if it still maps to this key.
func (w *Workflow) drop(key string) {
	w.mu.Lock()
	delete(w.tokens, key)
	w.mu.Unlock()
}

// State returns the token's current state.
func (t *Token) State() string {
	t.t.mu.Lock()
	defer t.t.mu.Unlock()
	return t.t.state
}
