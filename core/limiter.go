package core

// DefaultMaxTurns bounds a session when no explicit limit is configured.
const DefaultMaxTurns = 5

// TurnCounter tracks model round-trips for one session. Turns are numbered
// from 1 and never exceed the configured maximum.
//
// A TurnCounter is session scoped and not safe for concurrent use.
type TurnCounter struct {
	max   int
	count int
}

// NewTurnCounter creates a counter bounded by max. Values <= 0 fall back to
// DefaultMaxTurns.
func NewTurnCounter(max int) *TurnCounter {
	if max <= 0 {
		max = DefaultMaxTurns
	}
	return &TurnCounter{max: max}
}

// Next starts the next turn and returns its number. ok is false when the
// budget is already spent; the count does not advance in that case.
func (tc *TurnCounter) Next() (turn int, ok bool) {
	if tc.count >= tc.max {
		return tc.count, false
	}
	tc.count++
	return tc.count, true
}

// Count returns the number of turns started so far.
func (tc *TurnCounter) Count() int { return tc.count }

// Max returns the configured budget.
func (tc *TurnCounter) Max() int { return tc.max }

// Exhausted reports whether the current turn is the last allowed one.
func (tc *TurnCounter) Exhausted() bool { return tc.count >= tc.max }

// Remaining returns how many turns are left.
func (tc *TurnCounter) Remaining() int { return tc.max - tc.count }
