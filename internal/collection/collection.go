// Package collection tracks one fetched list through Idle, Loading, Loaded and Failed.
//
// Every fetch is issued against a Ticket. A ticket carries the generation it was
// issued in and the tag (wallet address) it was issued for; completions for a ticket
// that is no longer current are dropped so late results never overwrite newer state.
package collection

import (
	"fmt"
	"sync"
)

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Idle, Loading, Loaded, Failed} {
		if string(text) == st.String() {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("collection: unknown state %q", text)
}

// FailurePolicy decides what a failed fetch does to the items already held.
type FailurePolicy int

const (
	RetainOnFailure FailurePolicy = iota
	ClearOnFailure
)

type Ticket struct {
	gen uint64
	tag string
}

func (t Ticket) Tag() string { return t.tag }

type Snapshot[T any] struct {
	Name  string
	State State
	Items []T
	Err   error
	Tag   string
}

type Collection[T any] struct {
	name   string
	policy FailurePolicy

	mu        sync.Mutex
	state     State
	prevState State
	items     []T
	err       error
	gen       uint64
	tag       string
}

func New[T any](name string, policy FailurePolicy) *Collection[T] {
	return &Collection[T]{name: name, policy: policy}
}

func (c *Collection[T]) Name() string { return c.name }

// Begin enters Loading for tag and returns the ticket the result must be applied with.
// Any ticket issued earlier becomes stale.
func (c *Collection[T]) Begin(tag string) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.tag = tag
	if c.state != Loading {
		c.prevState = c.state
	}
	c.state = Loading
	return Ticket{gen: c.gen, tag: tag}
}

// Apply replaces the items and clears the error slot. It reports false for a stale ticket.
func (c *Collection[T]) Apply(t Ticket, items []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.currentLocked(t) {
		return false
	}
	c.items = append([]T(nil), items...)
	c.err = nil
	c.state = Loaded
	return true
}

// Fail records err in the error slot and applies the failure policy.
// It reports false for a stale ticket.
func (c *Collection[T]) Fail(t Ticket, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.currentLocked(t) {
		return false
	}
	c.err = err
	c.state = Failed
	if c.policy == ClearOnFailure {
		c.items = nil
	}
	return true
}

// Invalidate makes every outstanding ticket stale and rebinds the collection to tag.
// Items and the error slot are left untouched.
func (c *Collection[T]) Invalidate(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.tag = tag
	if c.state == Loading {
		c.state = c.prevState
	}
}

func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot[T]{
		Name:  c.name,
		State: c.state,
		Items: append([]T(nil), c.items...),
		Err:   c.err,
		Tag:   c.tag,
	}
}

func (c *Collection[T]) currentLocked(t Ticket) bool {
	return t.gen == c.gen && t.tag == c.tag
}
