package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the loop-level failure classes. Match them with
// errors.Is; use errors.As with the typed errors below for details.
var (
	// ErrGateway is matched by every *GatewayError.
	ErrGateway = errors.New("model gateway error")
	// ErrUnknownAction is matched by every *UnknownActionError.
	ErrUnknownAction = errors.New("unknown action")
	// ErrTurnBudgetExhausted is matched by every *TurnBudgetError.
	ErrTurnBudgetExhausted = errors.New("turn budget exhausted")
)

// GatewayErrorKind classifies a model gateway failure.
type GatewayErrorKind string

const (
	GatewayErrorAuth      GatewayErrorKind = "auth"
	GatewayErrorRateLimit GatewayErrorKind = "rate_limit"
	GatewayErrorNetwork   GatewayErrorKind = "network"
	GatewayErrorServer    GatewayErrorKind = "server"
	GatewayErrorInvalid   GatewayErrorKind = "invalid_request"
	GatewayErrorUnknown   GatewayErrorKind = "unknown"
)

// GatewayError reports a failed model completion. The loop never retries it.
type GatewayError struct {
	Provider   string           `json:"provider"`
	Kind       GatewayErrorKind `json:"kind"`
	StatusCode int              `json:"status_code,omitempty"`
	Err        error            `json:"-"`
}

func (e *GatewayError) Error() string {
	prefix := "gateway"
	if e.Provider != "" {
		prefix = e.Provider + " gateway"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error [%s, status %d]: %v", prefix, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s error [%s]: %v", prefix, e.Kind, e.Err)
}

// Unwrap returns the underlying transport or SDK error.
func (e *GatewayError) Unwrap() error { return e.Err }

// Is reports whether target is ErrGateway.
func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// KindFromStatus maps an HTTP status code onto a GatewayErrorKind.
func KindFromStatus(status int) GatewayErrorKind {
	switch {
	case status == 401 || status == 403:
		return GatewayErrorAuth
	case status == 429:
		return GatewayErrorRateLimit
	case status >= 500:
		return GatewayErrorServer
	case status >= 400:
		return GatewayErrorInvalid
	default:
		return GatewayErrorUnknown
	}
}

// UnknownActionError reports a directive naming a tool that is not registered.
type UnknownActionError struct {
	Name      string   `json:"name"`
	Available []string `json:"available,omitempty"`
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q", e.Name)
}

// Is reports whether target is ErrUnknownAction.
func (e *UnknownActionError) Is(target error) bool { return target == ErrUnknownAction }

// TurnBudgetError reports that the loop used every allowed turn without
// reaching a final answer.
type TurnBudgetError struct {
	MaxTurns int `json:"max_turns"`
}

func (e *TurnBudgetError) Error() string {
	return fmt.Sprintf("no answer reached within %d turns", e.MaxTurns)
}

// Is reports whether target is ErrTurnBudgetExhausted.
func (e *TurnBudgetError) Is(target error) bool { return target == ErrTurnBudgetExhausted }
