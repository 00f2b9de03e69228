package analysis

import "errors"

var (
	// ErrNoActiveRules means the checklist is empty; a run cannot start.
	ErrNoActiveRules = errors.New("no active policy rules")
	// ErrRunInFlight means another run for the same agreement is still going.
	ErrRunInFlight = errors.New("analysis already in progress")
	// ErrUnknownMode means the requested analysis mode is not recognised.
	ErrUnknownMode = errors.New("unknown analysis mode")
)
