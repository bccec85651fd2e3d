package domain

import "github.com/pkg/errors"

var (
	ErrInvalidRegistration   = errors.New("invalid registration")
	ErrUnknownRole           = errors.New("unknown registration role")
	ErrOrchestrationNotFound = errors.New("orchestration not found")
	ErrStepNotFound          = errors.New("step not found in topology")
	ErrRunNotFound           = errors.New("orchestration run not found")
	ErrRunAlreadyExists      = errors.New("orchestration run already exists")
	ErrStaleResponse         = errors.New("stale step response")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrTimelineNotFound      = errors.New("no audit events found for execution")
	ErrInvalidQuery          = errors.New("invalid query")
)
