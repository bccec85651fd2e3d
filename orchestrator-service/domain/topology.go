package domain

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/shared/models"
)

// ExecutionType defines how the steps of an orchestration are driven
type ExecutionType string

const (
	ExecutionTypeSequential   ExecutionType = "SEQUENTIAL"
	ExecutionTypeSimultaneous ExecutionType = "SIMULTANEOUS"
)

func (t ExecutionType) IsValid() bool {
	return t == ExecutionTypeSequential || t == ExecutionTypeSimultaneous
}

// RegistrationStatus is the registration state of a topology
type RegistrationStatus string

const (
	RegistrationStatusPending RegistrationStatus = "PENDING"
	RegistrationStatusSuccess RegistrationStatus = "SUCCESS"
	RegistrationStatusFailed  RegistrationStatus = "FAILED"
)

const (
	doTopicSuffix   = "do"
	undoTopicSuffix = "undo"
)

var topicUnsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// OrchestrationTemplate is the registered topology of an orchestration
type OrchestrationTemplate struct {
	Name             string
	ExecutionType    ExecutionType
	InitiatorService string
	Status           RegistrationStatus
	FailureReason    string
	Timestamps       models.Timestamps
	Steps            []*StepTemplate
}

// StepTemplate is one step of a topology
type StepTemplate struct {
	OrchestrationName string
	Sequence          int
	StepName          string
	ObjectType        string
	DoTopic           string
	UndoTopic         string
	TopicName         string
	MaxRetries        int
	CreatedAt         time.Time
}

// WorkerRegistration binds a worker service to a step
type WorkerRegistration struct {
	OrchestrationName string
	StepName          string
	ServiceName       string
	TopicName         string
	CreatedAt         time.Time
}

// NewOrchestrationTemplate creates a pending template without steps
func NewOrchestrationTemplate(name string, executionType ExecutionType, initiator string, now time.Time) *OrchestrationTemplate {
	return &OrchestrationTemplate{
		Name:             name,
		ExecutionType:    executionType,
		InitiatorService: initiator,
		Status:           RegistrationStatusPending,
		Timestamps:       models.NewTimestamps(now),
	}
}

// Redefine replaces the scalar fields and the steps of the template.
// Worker registrations are kept and re-evaluated by ApplyCoverage.
func (t *OrchestrationTemplate) Redefine(executionType ExecutionType, initiator string, steps []*StepTemplate, now time.Time) {
	t.ExecutionType = executionType
	t.InitiatorService = initiator
	t.Steps = steps
	t.Status = RegistrationStatusPending
	t.FailureReason = ""
	t.Timestamps = t.Timestamps.Update(now)
}

// NewStepTemplate creates a step and derives its broker topics
func NewStepTemplate(orchestrationName string, sequence int, stepName, objectType string, maxRetries int, now time.Time) *StepTemplate {
	return &StepTemplate{
		OrchestrationName: orchestrationName,
		Sequence:          sequence,
		StepName:          stepName,
		ObjectType:        objectType,
		DoTopic:           StepTopicName(orchestrationName, stepName, doTopicSuffix),
		UndoTopic:         StepTopicName(orchestrationName, stepName, undoTopicSuffix),
		TopicName:         StepTopicName(orchestrationName, stepName, ""),
		MaxRetries:        maxRetries,
		CreatedAt:         now,
	}
}

// StepTopicName builds a broker-safe topic name. SNS only accepts
// alphanumerics, hyphens and underscores.
func StepTopicName(orchestrationName, stepName, suffix string) string {
	parts := []string{sanitizeTopicPart(orchestrationName), sanitizeTopicPart(stepName)}
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, "-")
}

func sanitizeTopicPart(s string) string {
	return strings.Trim(topicUnsafeChars.ReplaceAllString(strings.TrimSpace(s), "-"), "-")
}

// StepByName returns the step or nil
func (t *OrchestrationTemplate) StepByName(name string) *StepTemplate {
	for _, step := range t.Steps {
		if step.StepName == name {
			return step
		}
	}
	return nil
}

// OrderedSteps returns the steps sorted by sequence
func (t *OrchestrationTemplate) OrderedSteps() []*StepTemplate {
	steps := make([]*StepTemplate, len(t.Steps))
	copy(steps, t.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Sequence < steps[j].Sequence
	})
	return steps
}

// UncoveredSteps returns the names of steps without any worker, in sequence order
func (t *OrchestrationTemplate) UncoveredSteps(workers []*WorkerRegistration) []string {
	covered := make(map[string]bool, len(workers))
	for _, w := range workers {
		covered[w.StepName] = true
	}

	var missing []string
	for _, step := range t.OrderedSteps() {
		if !covered[step.StepName] {
			missing = append(missing, step.StepName)
		}
	}
	return missing
}

// ApplyCoverage recomputes the registration status from the current workers.
// A template is SUCCESS iff it has steps and every step has at least one worker.
// It reports whether the status or reason changed.
func (t *OrchestrationTemplate) ApplyCoverage(workers []*WorkerRegistration, now time.Time) bool {
	status, reason := RegistrationStatusPending, ""
	switch {
	case len(t.Steps) == 0:
		status, reason = RegistrationStatusFailed, "no steps registered"
	case len(t.UncoveredSteps(workers)) == 0:
		status = RegistrationStatusSuccess
	case t.Status == RegistrationStatusFailed:
		// keep the recorded failure until coverage completes
		status, reason = RegistrationStatusFailed, t.FailureReason
	}

	if status == t.Status && reason == t.FailureReason {
		return false
	}

	t.Status = status
	t.FailureReason = reason
	t.Timestamps = t.Timestamps.Update(now)
	return true
}

// IsRegistered reports whether runs can be started
func (t *OrchestrationTemplate) IsRegistered() bool {
	return t != nil && t.Status == RegistrationStatusSuccess
}

// TemplateFilter filters template listings
type TemplateFilter struct {
	Name          string
	Status        RegistrationStatus
	ExecutionType ExecutionType
	From          *time.Time
	To            *time.Time
	Page          models.Page
}

// TopologyRepository persists templates, steps and worker registrations.
// Find methods return nil, nil when nothing matches.
type TopologyRepository interface {
	// RunInTx runs fn against a repository bound to a single transaction
	RunInTx(ctx context.Context, fn func(repo TopologyRepository) error) error
	FindByName(ctx context.Context, name string) (*OrchestrationTemplate, error)
	FindByStatuses(ctx context.Context, statuses ...RegistrationStatus) ([]*OrchestrationTemplate, error)
	List(ctx context.Context, filter TemplateFilter) ([]*OrchestrationTemplate, int, error)
	Save(ctx context.Context, template *OrchestrationTemplate) error
	UpdateStatus(ctx context.Context, template *OrchestrationTemplate) error
	ReplaceSteps(ctx context.Context, name string, steps []*StepTemplate) error
	FindWorkers(ctx context.Context, name string) ([]*WorkerRegistration, error)
	DeleteWorkerRegistrations(ctx context.Context, name, serviceName string, stepNames []string) error
	SaveWorkerRegistration(ctx context.Context, registration *WorkerRegistration) error
}
