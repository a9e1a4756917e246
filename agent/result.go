package agent

import (
	"time"

	"github.com/hupe1980/reactloop/core"
)

// Status is the state of a query session.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Terminal reports whether no further turns will run.
func (s Status) Terminal() bool { return s == StatusDone || s == StatusFailed }

// Step is the transcript record of one turn.
type Step struct {
	Turn        int              `json:"turn"`
	Response    string           `json:"response"`
	Action      *ActionDirective `json:"action,omitempty"`
	Observation string           `json:"observation,omitempty"`
	ToolErr     error            `json:"-"`
	Duration    time.Duration    `json:"duration"`
}

// Result is the outcome of one query session. Answer is set only when
// Status is StatusDone; Err only when it is StatusFailed.
type Result struct {
	SessionID string         `json:"session_id"`
	Question  string         `json:"question"`
	Status    Status         `json:"status"`
	Answer    string         `json:"answer,omitempty"`
	Err       error          `json:"-"`
	Turns     int            `json:"turns"`
	Steps     []Step         `json:"steps"`
	Messages  []core.Message `json:"messages"`
	Duration  time.Duration  `json:"duration"`
}

// Done reports whether the session produced a final answer.
func (r *Result) Done() bool { return r.Status == StatusDone }

// ErrorMessage returns the failure message or an empty string.
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
