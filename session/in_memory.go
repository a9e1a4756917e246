package session

import (
	"errors"
	"sync"

	"github.com/hupe1980/reactloop/agent"
	"github.com/hupe1980/reactloop/core"
)

// ErrNotFound is returned when no result is stored under a session id.
var ErrNotFound = errors.New("session not found")

// Store records finished session results.
type Store interface {
	Save(res *agent.Result) error
	Get(sessionID string) (*agent.Result, error)
	List() ([]*agent.Result, error)
}

// InMemoryStore is a volatile Store implementation keeping results in a
// process local map. It is safe for concurrent access. Each returned result
// is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu      sync.RWMutex
	results map[string]*agent.Result
	order   []string
	limit   int
}

// InMemoryOptions configures an InMemoryStore.
type InMemoryOptions struct {
	// Limit caps the number of stored results; the oldest is evicted first.
	// Zero means unbounded.
	Limit int
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore(optFns ...func(o *InMemoryOptions)) *InMemoryStore {
	opts := InMemoryOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{results: make(map[string]*agent.Result), limit: opts.Limit}
}

// Save stores a clone of res, replacing any result with the same id.
func (s *InMemoryStore) Save(res *agent.Result) error {
	if res == nil || res.SessionID == "" {
		return errors.New("session: result without session id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[res.SessionID]; !exists {
		s.order = append(s.order, res.SessionID)
	}
	s.results[res.SessionID] = clone(res)

	if s.limit > 0 {
		for len(s.order) > s.limit {
			delete(s.results, s.order[0])
			s.order = s.order[1:]
		}
	}
	return nil
}

// Get returns a clone of the stored result.
func (s *InMemoryStore) Get(sessionID string) (*agent.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(res), nil
}

// List returns clones of every stored result in insertion order.
func (s *InMemoryStore) List() ([]*agent.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*agent.Result, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.results[id]))
	}
	return out, nil
}

// Len returns the number of stored results.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func clone(res *agent.Result) *agent.Result {
	c := *res
	c.Steps = append([]agent.Step(nil), res.Steps...)
	c.Messages = append([]core.Message(nil), res.Messages...)
	return &c
}
