package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/pkg/errors"
)

// RunStatus represents the status of an orchestration run
type RunStatus string

const (
	RunStatusNotRegistered RunStatus = "NOT_REGISTERED"
	RunStatusInProgress    RunStatus = "IN_PROGRESS"
	RunStatusCompleted     RunStatus = "COMPLETED"
	RunStatusFailed        RunStatus = "FAILED"
	RunStatusUndoing       RunStatus = "UNDOING"
	RunStatusUndone        RunStatus = "UNDONE"
)

// StepStatus represents the status of a step run
type StepStatus string

const (
	StepStatusPending        StepStatus = "PENDING"
	StepStatusInProgress     StepStatus = "IN_PROGRESS"
	StepStatusDoSuccess      StepStatus = "DO_SUCCESS"
	StepStatusFailed         StepStatus = "FAILED"
	StepStatusRetryExhausted StepStatus = "RETRY_EXHAUSTED"
	StepStatusUndoing        StepStatus = "UNDOING"
	StepStatusUndoSuccess    StepStatus = "UNDO_SUCCESS"
	StepStatusUndoFail       StepStatus = "UNDO_FAIL"
)

// Action is the operation carried by a step message
type Action string

const (
	ActionDo       Action = "DO"
	ActionUndo     Action = "UNDO"
	ActionFailStep Action = "FAIL_STEP"
)

// ParseAction parses an action header. A missing action means DO.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ActionDo:
		return ActionDo, nil
	case ActionUndo:
		return ActionUndo, nil
	case ActionFailStep:
		return ActionFailStep, nil
	}
	return "", errors.Errorf("unknown action %q", s)
}

// StepRun is the execution state of one step within a run
type StepRun struct {
	FlowID        models.ID
	StepName      string
	Sequence      int
	ObjectType    string
	Status        StepStatus
	WorkerService string
	RetryCount    int
	MaxRetries    int
	// Attempt is bumped on every dispatch and fences stale responses
	Attempt       int
	DoTopic       string
	UndoTopic     string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	LastRetriedAt *time.Time
	UndoneAt      *time.Time
	ErrorMessage  string
}

// IsActive reports whether the step waits for a worker response
func (s *StepRun) IsActive() bool {
	return s.Status == StepStatusInProgress || s.Status == StepStatusUndoing
}

func (s *StepRun) accepts(resp StepResponse) error {
	want := StepStatusInProgress
	if resp.Action == ActionUndo {
		want = StepStatusUndoing
	}
	if s.Status != want {
		return errors.Wrapf(ErrStaleResponse, "%s response for step %s in status %s", resp.Action, s.StepName, s.Status)
	}
	if resp.Attempt > 0 && resp.Attempt != s.Attempt {
		return errors.Wrapf(ErrStaleResponse, "attempt %d of step %s superseded by attempt %d", resp.Attempt, s.StepName, s.Attempt)
	}
	return nil
}

func (s *StepRun) elapsed(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	return now.Sub(*s.StartedAt)
}

// StepResponse is a worker reply correlated by flow id and step name
type StepResponse struct {
	OrchestrationName string
	StepName          string
	Action            Action
	Success           bool
	Attempt           int
	WorkerService     string
	Error             string
}

// Dispatch is a step message the run wants published once its state is committed
type Dispatch struct {
	FlowID            models.ID
	OrchestrationName string
	StepName          string
	Sequence          int
	ObjectType        string
	Action            Action
	Topic             string
	Attempt           int
	Delay             time.Duration
	Payload           json.RawMessage
}

// FailureResponse is the response fed back to the run when the dispatch could not be published
func (d Dispatch) FailureResponse(err error) StepResponse {
	return StepResponse{
		OrchestrationName: d.OrchestrationName,
		StepName:          d.StepName,
		Action:            d.Action,
		Attempt:           d.Attempt,
		Error:             "dispatch failed: " + err.Error(),
	}
}

// Transition records a lifecycle change of the run for auditing
type Transition struct {
	Type       AuditEventType
	StepName   string
	Operation  Action
	Status     string
	Reason     string
	RetryCount int
	Duration   time.Duration
	At         time.Time
	Details    map[string]interface{}
}

// OrchestrationRun aggregate root
type OrchestrationRun struct {
	FlowID            models.ID
	OrchestrationName string
	ExecutionType     ExecutionType
	Status            RunStatus
	Payload           json.RawMessage
	StartedAt         time.Time
	CompletedAt       *time.Time
	UpdatedAt         time.Time
	Steps             []*StepRun

	dispatches  []Dispatch
	transitions []Transition
}

// NewRun creates a run from the current topology. When the topology is not
// fully registered the run is parked as NOT_REGISTERED and nothing is dispatched.
func NewRun(flowID models.ID, orchestrationName string, template *OrchestrationTemplate, payload json.RawMessage, now time.Time) *OrchestrationRun {
	run := &OrchestrationRun{
		FlowID:            flowID,
		OrchestrationName: orchestrationName,
		Status:            RunStatusNotRegistered,
		Payload:           payload,
		StartedAt:         now,
		UpdatedAt:         now,
	}
	run.begin(template, now)
	return run
}

// Restart re-initialises a NOT_REGISTERED run from the current topology
func (r *OrchestrationRun) Restart(template *OrchestrationTemplate, payload json.RawMessage, now time.Time) error {
	if r.Status != RunStatusNotRegistered {
		return errors.Wrapf(ErrInvalidTransition, "run %s is %s", r.FlowID, r.Status)
	}
	if len(payload) > 0 {
		r.Payload = payload
	}
	r.begin(template, now)
	return nil
}

func (r *OrchestrationRun) begin(template *OrchestrationTemplate, now time.Time) {
	r.UpdatedAt = now

	if !template.IsRegistered() {
		reason := "orchestration is not registered"
		if template != nil {
			reason = fmt.Sprintf("orchestration registration is %s", template.Status)
		}
		r.Status = RunStatusNotRegistered
		r.Steps = nil
		r.record(Transition{Type: AuditOrchestrationNotRegistered, Status: string(r.Status), Reason: reason, At: now})
		return
	}

	r.ExecutionType = template.ExecutionType
	r.Status = RunStatusInProgress
	r.StartedAt = now
	r.Steps = make([]*StepRun, 0, len(template.Steps))
	for _, st := range template.OrderedSteps() {
		r.Steps = append(r.Steps, &StepRun{
			FlowID:     r.FlowID,
			StepName:   st.StepName,
			Sequence:   st.Sequence,
			ObjectType: st.ObjectType,
			Status:     StepStatusPending,
			MaxRetries: st.MaxRetries,
			DoTopic:    st.DoTopic,
			UndoTopic:  st.UndoTopic,
		})
	}

	r.record(Transition{
		Type:    AuditOrchestrationStarted,
		Status:  string(r.Status),
		At:      now,
		Details: map[string]interface{}{"executionType": string(r.ExecutionType), "steps": len(r.Steps)},
	})

	if len(r.Steps) == 0 {
		r.complete(now)
		return
	}

	if r.ExecutionType == ExecutionTypeSequential {
		r.startStep(r.nextPending(), now)
		return
	}
	for _, step := range r.Steps {
		r.startStep(step, now)
	}
}

// HandleResponse applies a worker response to the state machine. Responses
// that do not match the step's active state or current attempt return
// ErrStaleResponse and leave the run untouched.
func (r *OrchestrationRun) HandleResponse(resp StepResponse, backoff time.Duration, now time.Time) error {
	step := r.Step(resp.StepName)
	if step == nil {
		return errors.Wrapf(ErrStepNotFound, "step %s in run %s", resp.StepName, r.FlowID)
	}
	if err := step.accepts(resp); err != nil {
		return err
	}

	if resp.WorkerService != "" {
		step.WorkerService = resp.WorkerService
	}
	r.UpdatedAt = now

	switch {
	case resp.Action == ActionFailStep:
		r.vetoStep(step, resp.Error, now)
	case resp.Action == ActionUndo && resp.Success:
		r.undoSucceeded(step, now)
	case resp.Action == ActionUndo:
		r.undoFailed(step, resp.Error, backoff, now)
	case resp.Success:
		r.doSucceeded(step, now)
	default:
		r.doFailed(step, resp.Error, backoff, now)
	}

	return nil
}

func (r *OrchestrationRun) doSucceeded(step *StepRun, now time.Time) {
	step.Status = StepStatusDoSuccess
	step.CompletedAt = &now
	step.ErrorMessage = ""
	r.record(r.stepTransition(AuditStepSuccess, step, ActionDo, "", now, withDuration(step.elapsed(now))))

	if r.Status != RunStatusInProgress {
		// the run failed while this step was in flight, so its effect is compensated as well.
		// A run stuck on an exhausted undo stays FAILED.
		stuck := r.Status == RunStatusFailed && len(r.stepsIn(StepStatusUndoFail)) > 0
		if r.Status != RunStatusUndoing && !stuck {
			r.Status = RunStatusUndoing
			r.record(Transition{Type: AuditRollbackStarted, Status: string(r.Status), At: now,
				Details: map[string]interface{}{"steps": []string{step.StepName}}})
		}
		r.startUndo(step, now)
		return
	}

	if r.ExecutionType == ExecutionTypeSequential {
		if next := r.nextPending(); next != nil {
			r.startStep(next, now)
			return
		}
	} else if !r.allSteps(StepStatusDoSuccess) {
		return
	}

	r.complete(now)
}

func (r *OrchestrationRun) doFailed(step *StepRun, reason string, backoff time.Duration, now time.Time) {
	reason = failureReason(reason, "step failed")

	if r.Status != RunStatusInProgress {
		step.Status = StepStatusFailed
		step.ErrorMessage = reason
		step.CompletedAt = &now
		r.record(r.stepTransition(AuditStepFailed, step, ActionDo, reason, now))
		r.settleCompensation(now)
		return
	}

	if step.RetryCount < step.MaxRetries {
		r.retry(step, ActionDo, reason, backoff, now)
		return
	}

	step.Status = StepStatusRetryExhausted
	step.ErrorMessage = reason
	step.CompletedAt = &now
	r.record(r.stepTransition(AuditStepFailed, step, ActionDo, "retries exhausted: "+reason, now))
	r.failAndCompensate(step, fmt.Sprintf("step %s exhausted %d retries", step.StepName, step.MaxRetries), now)
}

func (r *OrchestrationRun) vetoStep(step *StepRun, reason string, now time.Time) {
	reason = failureReason(reason, "step vetoed by worker")

	step.Status = StepStatusFailed
	step.ErrorMessage = reason
	step.CompletedAt = &now
	r.record(r.stepTransition(AuditStepFailed, step, ActionDo, reason, now, withDetail("vetoed", true)))

	if r.Status != RunStatusInProgress {
		r.settleCompensation(now)
		return
	}
	r.failAndCompensate(step, fmt.Sprintf("step %s vetoed by worker", step.StepName), now)
}

func (r *OrchestrationRun) failAndCompensate(step *StepRun, reason string, now time.Time) {
	r.Status = RunStatusFailed
	r.record(Transition{Type: AuditOrchestrationFailed, Status: string(r.Status), Reason: reason, At: now})
	r.record(Transition{Type: AuditRollbackTriggered, StepName: step.StepName, Status: string(r.Status), Reason: reason, At: now})

	succeeded := r.stepsIn(StepStatusDoSuccess)
	if len(succeeded) == 0 {
		r.record(Transition{Type: AuditRollbackCompleted, Status: string(r.Status), Reason: "nothing to compensate", At: now})
		return
	}

	names := make([]string, len(succeeded))
	for i, s := range succeeded {
		names[i] = s.StepName
	}

	r.Status = RunStatusUndoing
	r.record(Transition{Type: AuditRollbackStarted, Status: string(r.Status), At: now,
		Details: map[string]interface{}{"steps": names}})

	if r.ExecutionType == ExecutionTypeSequential {
		r.startUndo(r.lastSucceeded(), now)
		return
	}
	for _, s := range succeeded {
		r.startUndo(s, now)
	}
}

func (r *OrchestrationRun) undoSucceeded(step *StepRun, now time.Time) {
	step.Status = StepStatusUndoSuccess
	step.UndoneAt = &now
	step.ErrorMessage = ""
	r.record(r.stepTransition(AuditUndoCompleted, step, ActionUndo, "", now))

	if r.Status == RunStatusUndoing && r.ExecutionType == ExecutionTypeSequential {
		if next := r.lastSucceeded(); next != nil {
			r.startUndo(next, now)
			return
		}
	}
	r.settleCompensation(now)
}

func (r *OrchestrationRun) undoFailed(step *StepRun, reason string, backoff time.Duration, now time.Time) {
	reason = failureReason(reason, "undo failed")

	if step.RetryCount < step.MaxRetries {
		r.retry(step, ActionUndo, reason, backoff, now)
		return
	}

	step.Status = StepStatusUndoFail
	step.ErrorMessage = reason
	r.record(r.stepTransition(AuditUndoFailed, step, ActionUndo, "undo retries exhausted, operator action required: "+reason, now))

	if r.Status == RunStatusUndoing {
		r.Status = RunStatusFailed
		r.record(Transition{
			Type:   AuditOrchestrationFailed,
			Status: string(r.Status),
			Reason: fmt.Sprintf("compensation of step %s failed, operator action required", step.StepName),
			At:     now,
		})
	}
}

// settleCompensation finishes an UNDOING run once no step is still in flight
// or waiting to be undone.
func (r *OrchestrationRun) settleCompensation(now time.Time) {
	if r.Status != RunStatusUndoing {
		return
	}
	for _, s := range r.Steps {
		switch s.Status {
		case StepStatusInProgress, StepStatusUndoing, StepStatusDoSuccess:
			return
		}
	}
	if stuck := r.stepsIn(StepStatusUndoFail); len(stuck) > 0 {
		r.Status = RunStatusFailed
		r.record(Transition{
			Type:   AuditOrchestrationFailed,
			Status: string(r.Status),
			Reason: fmt.Sprintf("compensation of step %s failed, operator action required", stuck[0].StepName),
			At:     now,
		})
		return
	}

	r.Status = RunStatusUndone
	r.CompletedAt = &now
	r.record(Transition{Type: AuditRollbackCompleted, Status: string(r.Status), At: now})
}

func (r *OrchestrationRun) complete(now time.Time) {
	r.Status = RunStatusCompleted
	r.CompletedAt = &now
	r.record(Transition{
		Type:     AuditOrchestrationCompleted,
		Status:   string(r.Status),
		Duration: now.Sub(r.StartedAt),
		At:       now,
	})
}

func (r *OrchestrationRun) startStep(step *StepRun, now time.Time) {
	step.Status = StepStatusInProgress
	step.StartedAt = &now
	step.ErrorMessage = ""
	r.record(r.stepTransition(AuditStepStarted, step, ActionDo, "", now))
	r.dispatch(step, ActionDo, 0)
}

func (r *OrchestrationRun) startUndo(step *StepRun, now time.Time) {
	step.Status = StepStatusUndoing
	step.RetryCount = 0
	step.ErrorMessage = ""
	r.record(r.stepTransition(AuditUndoStarted, step, ActionUndo, "", now))
	r.dispatch(step, ActionUndo, 0)
}

func (r *OrchestrationRun) retry(step *StepRun, action Action, reason string, backoff time.Duration, now time.Time) {
	step.RetryCount++
	step.LastRetriedAt = &now
	step.ErrorMessage = reason
	r.record(r.stepTransition(AuditRetryTriggered, step, action, reason, now))
	r.dispatch(step, action, backoff)
}

func (r *OrchestrationRun) dispatch(step *StepRun, action Action, delay time.Duration) {
	step.Attempt++

	topic := step.DoTopic
	if action == ActionUndo {
		topic = step.UndoTopic
	}

	r.dispatches = append(r.dispatches, Dispatch{
		FlowID:            r.FlowID,
		OrchestrationName: r.OrchestrationName,
		StepName:          step.StepName,
		Sequence:          step.Sequence,
		ObjectType:        step.ObjectType,
		Action:            action,
		Topic:             topic,
		Attempt:           step.Attempt,
		Delay:             delay,
		Payload:           r.Payload,
	})
}

type transitionOption func(*Transition)

func withDuration(d time.Duration) transitionOption {
	return func(t *Transition) { t.Duration = d }
}

func withDetail(key string, value interface{}) transitionOption {
	return func(t *Transition) {
		if t.Details == nil {
			t.Details = make(map[string]interface{})
		}
		t.Details[key] = value
	}
}

func (r *OrchestrationRun) stepTransition(eventType AuditEventType, step *StepRun, op Action, reason string, now time.Time, opts ...transitionOption) Transition {
	t := Transition{
		Type:       eventType,
		StepName:   step.StepName,
		Operation:  op,
		Status:     string(step.Status),
		Reason:     reason,
		RetryCount: step.RetryCount,
		At:         now,
		Details:    map[string]interface{}{"attempt": step.Attempt, "sequence": step.Sequence},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (r *OrchestrationRun) record(t Transition) {
	r.transitions = append(r.transitions, t)
}

// Step returns the step run or nil
func (r *OrchestrationRun) Step(name string) *StepRun {
	for _, s := range r.Steps {
		if s.StepName == name {
			return s
		}
	}
	return nil
}

// ActiveSteps returns the steps waiting for a worker response
func (r *OrchestrationRun) ActiveSteps() []*StepRun {
	var active []*StepRun
	for _, s := range r.Steps {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}

// IsFinished reports whether the run reached a status no response can move
// it out of on its own
func (r *OrchestrationRun) IsFinished() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusUndone:
		return true
	case RunStatusFailed:
		return len(r.ActiveSteps()) == 0
	}
	return false
}

// Dispatches returns the messages pending publication
func (r *OrchestrationRun) Dispatches() []Dispatch {
	return r.dispatches
}

// Transitions returns the lifecycle changes pending auditing
func (r *OrchestrationRun) Transitions() []Transition {
	return r.transitions
}

// ClearPending drops pending dispatches and transitions
func (r *OrchestrationRun) ClearPending() {
	r.dispatches = nil
	r.transitions = nil
}

func (r *OrchestrationRun) nextPending() *StepRun {
	var next *StepRun
	for _, s := range r.Steps {
		if s.Status == StepStatusPending && (next == nil || s.Sequence < next.Sequence) {
			next = s
		}
	}
	return next
}

func (r *OrchestrationRun) lastSucceeded() *StepRun {
	var last *StepRun
	for _, s := range r.Steps {
		if s.Status == StepStatusDoSuccess && (last == nil || s.Sequence > last.Sequence) {
			last = s
		}
	}
	return last
}

func (r *OrchestrationRun) stepsIn(status StepStatus) []*StepRun {
	var steps []*StepRun
	for _, s := range r.Steps {
		if s.Status == status {
			steps = append(steps, s)
		}
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Sequence < steps[j].Sequence
	})
	return steps
}

func (r *OrchestrationRun) allSteps(status StepStatus) bool {
	for _, s := range r.Steps {
		if s.Status != status {
			return false
		}
	}
	return true
}

func failureReason(reason, fallback string) string {
	if strings.TrimSpace(reason) == "" {
		return fallback
	}
	return reason
}

// RunFilter filters run listings
type RunFilter struct {
	OrchestrationName string
	Status            RunStatus
	From              *time.Time
	To                *time.Time
	Page              models.Page
}

// RunRepository persists runs and their steps
type RunRepository interface {
	// Create inserts a new run, ErrRunAlreadyExists if the flow id is taken
	Create(ctx context.Context, run *OrchestrationRun) error
	// FindByID returns nil, nil when the run does not exist
	FindByID(ctx context.Context, flowID models.ID) (*OrchestrationRun, error)
	// Update loads the run under a row lock, applies fn and persists the result
	// in the same transaction. Errors from fn roll the transaction back.
	Update(ctx context.Context, flowID models.ID, fn func(run *OrchestrationRun) error) (*OrchestrationRun, error)
	List(ctx context.Context, filter RunFilter) ([]*OrchestrationRun, int, error)
}
