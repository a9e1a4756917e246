package core

import "github.com/google/uuid"

// NewID returns a random UUID string used to correlate a query session across
// logs, hooks and the session store.
func NewID() string { return uuid.NewString() }
