package domain

import (
	"context"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
)

// RegistrationRole selects the registration protocol
type RegistrationRole string

const (
	RoleInitiator RegistrationRole = "INITIATOR"
	RoleWorker    RegistrationRole = "WORKER"
)

func (r RegistrationRole) IsValid() bool {
	return r == RoleInitiator || r == RoleWorker
}

// StepRegistration is one step submitted in a registration request.
// Sequence is mandatory for initiators only.
type StepRegistration struct {
	StepName   string `json:"stepName"`
	Sequence   *int   `json:"sequence,omitempty"`
	ObjectType string `json:"objectType,omitempty"`
	MaxRetries *int   `json:"maxRetries,omitempty"`
}

// Registration is a registration request
type Registration struct {
	OrchestrationName string             `json:"orchestrationName"`
	Role              RegistrationRole   `json:"role"`
	ExecutionType     ExecutionType      `json:"executionType,omitempty"`
	Steps             []StepRegistration `json:"steps"`
}

// StepNames returns the submitted step names, blanks included
func (r *Registration) StepNames() []string {
	names := make([]string, len(r.Steps))
	for i, step := range r.Steps {
		names[i] = step.StepName
	}
	return names
}

// Validate checks the request level fields. Step level problems are
// reported per step by the registration protocols.
func (r *Registration) Validate(serviceName string) error {
	if strings.TrimSpace(r.OrchestrationName) == "" {
		return errors.Wrap(ErrInvalidRegistration, "orchestration name is required")
	}
	if strings.TrimSpace(serviceName) == "" {
		return errors.Wrap(ErrInvalidRegistration, "calling service name is required")
	}
	if !r.Role.IsValid() {
		return errors.Wrapf(ErrUnknownRole, "role %q", r.Role)
	}
	if len(r.Steps) == 0 {
		return errors.Wrap(ErrInvalidRegistration, "at least one step is required")
	}
	if r.Role == RoleInitiator && !r.ExecutionType.IsValid() {
		return errors.Wrapf(ErrInvalidRegistration, "execution type must be %s or %s", ExecutionTypeSequential, ExecutionTypeSimultaneous)
	}
	return nil
}

// RegistrationResult is the outcome of a registration attempt
type RegistrationResult struct {
	OrchestrationName string             `json:"orchestrationName"`
	Role              RegistrationRole   `json:"role"`
	ServiceName       string             `json:"serviceName"`
	Status            RegistrationStatus `json:"status"`
	TemplateStatus    RegistrationStatus `json:"templateStatus,omitempty"`
	Reason            string             `json:"reason,omitempty"`
	RegisteredSteps   []string           `json:"registeredSteps"`
	FailedSteps       []string           `json:"failedSteps"`
}

// NewRegistrationResult creates a successful result for the request
func NewRegistrationResult(registration *Registration, serviceName string) *RegistrationResult {
	return &RegistrationResult{
		OrchestrationName: registration.OrchestrationName,
		Role:              registration.Role,
		ServiceName:       serviceName,
		Status:            RegistrationStatusSuccess,
		RegisteredSteps:   []string{},
		FailedSteps:       []string{},
	}
}

// StepRegistered records an accepted step
func (r *RegistrationResult) StepRegistered(stepName string) {
	r.RegisteredSteps = append(r.RegisteredSteps, stepName)
}

// StepFailed records a rejected step. Any rejected step fails the result.
func (r *RegistrationResult) StepFailed(stepName, reason string) {
	if stepName == "" {
		stepName = "<unnamed>"
	}
	r.FailedSteps = append(r.FailedSteps, stepName+": "+reason)
	r.Status = RegistrationStatusFailed
}

// Fail fails the whole result
func (r *RegistrationResult) Fail(reason string) {
	r.Status = RegistrationStatusFailed
	r.Reason = reason
}

// Succeeded reports whether every submitted step was accepted
func (r *RegistrationResult) Succeeded() bool {
	return r.Status == RegistrationStatusSuccess
}

// RegistrationAudit is the append-only record of a registration attempt
type RegistrationAudit struct {
	ID                models.ID
	OrchestrationName string
	Role              RegistrationRole
	ServiceName       string
	Status            RegistrationStatus
	SubmittedSteps    []string
	FailedSteps       []string
	Reason            string
	CreatedAt         time.Time
}

// NewRegistrationAudit records the outcome of a registration
func NewRegistrationAudit(registration *Registration, result *RegistrationResult, now time.Time) *RegistrationAudit {
	return &RegistrationAudit{
		ID:                models.GenerateUUID(),
		OrchestrationName: registration.OrchestrationName,
		Role:              registration.Role,
		ServiceName:       result.ServiceName,
		Status:            result.Status,
		SubmittedSteps:    registration.StepNames(),
		FailedSteps:       result.FailedSteps,
		Reason:            result.Reason,
		CreatedAt:         now,
	}
}

// RegistrationAuditRepository stores registration history
type RegistrationAuditRepository interface {
	Save(ctx context.Context, audit *RegistrationAudit) error
	FindByOrchestration(ctx context.Context, name string, page models.Page) ([]*RegistrationAudit, error)
}
