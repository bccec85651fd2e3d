package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func registeredTemplate(executionType ExecutionType, maxRetries int, steps ...string) *OrchestrationTemplate {
	template := NewOrchestrationTemplate("tenantCreation", executionType, "tenant-svc", testNow)
	for i, name := range steps {
		template.Steps = append(template.Steps, NewStepTemplate("tenantCreation", i+1, name, "Tenant", maxRetries, testNow))
	}
	template.Status = RegistrationStatusSuccess
	return template
}

func ok(step string) StepResponse {
	return StepResponse{StepName: step, Action: ActionDo, Success: true}
}

func fail(step string) StepResponse {
	return StepResponse{StepName: step, Action: ActionDo, Error: "boom"}
}

func undone(step string) StepResponse {
	return StepResponse{StepName: step, Action: ActionUndo, Success: true}
}

func undoFailed(step string) StepResponse {
	return StepResponse{StepName: step, Action: ActionUndo, Error: "undo boom"}
}

// apply feeds responses and checks sequential exclusivity after every step
func apply(t *testing.T, run *OrchestrationRun, responses ...StepResponse) {
	t.Helper()
	for _, resp := range responses {
		require.NoError(t, run.HandleResponse(resp, time.Second, testNow.Add(time.Minute)))
		if run.ExecutionType == ExecutionTypeSequential {
			assert.LessOrEqual(t, len(run.ActiveSteps()), 1, "sequential run has more than one active step")
		}
	}
}

func dispatchedTopics(run *OrchestrationRun) []string {
	var topics []string
	for _, d := range run.Dispatches() {
		topics = append(topics, d.Topic)
	}
	return topics
}

func transitionTypes(run *OrchestrationRun) []AuditEventType {
	var types []AuditEventType
	for _, tr := range run.Transitions() {
		types = append(types, tr.Type)
	}
	return types
}

func TestNewRun_Sequential(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 3, "createRealm", "createClient")
	run := NewRun("flow-1", "tenantCreation", template, json.RawMessage(`{"tenant":"acme"}`), testNow)

	assert.Equal(t, RunStatusInProgress, run.Status)
	require.Len(t, run.Steps, 2)
	assert.Equal(t, StepStatusInProgress, run.Step("createRealm").Status)
	assert.Equal(t, StepStatusPending, run.Step("createClient").Status)
	assert.Equal(t, 3, run.Step("createClient").MaxRetries)

	require.Len(t, run.Dispatches(), 1)
	dispatch := run.Dispatches()[0]
	assert.Equal(t, "tenantCreation-createRealm-do", dispatch.Topic)
	assert.Equal(t, ActionDo, dispatch.Action)
	assert.Equal(t, 1, dispatch.Attempt)
	assert.Equal(t, time.Duration(0), dispatch.Delay)
	assert.JSONEq(t, `{"tenant":"acme"}`, string(dispatch.Payload))

	assert.Equal(t, []AuditEventType{AuditOrchestrationStarted, AuditStepStarted}, transitionTypes(run))
}

func TestNewRun_SequentialStartsLowestSequence(t *testing.T) {
	template := NewOrchestrationTemplate("billing", ExecutionTypeSequential, "billing-svc", testNow)
	template.Steps = []*StepTemplate{
		NewStepTemplate("billing", 20, "charge", "Invoice", 1, testNow),
		NewStepTemplate("billing", 10, "reserve", "Invoice", 1, testNow),
	}
	template.Status = RegistrationStatusSuccess

	run := NewRun("flow-1", "billing", template, nil, testNow)
	assert.Equal(t, []string{"billing-reserve-do"}, dispatchedTopics(run))
	assert.Equal(t, "reserve", run.Steps[0].StepName)
}

func TestNewRun_NotRegistered(t *testing.T) {
	tests := []struct {
		name     string
		template *OrchestrationTemplate
		reason   string
	}{
		{name: "unknown orchestration", template: nil, reason: "orchestration is not registered"},
		{
			name: "pending registration",
			template: func() *OrchestrationTemplate {
				tpl := registeredTemplate(ExecutionTypeSequential, 1, "createRealm")
				tpl.Status = RegistrationStatusPending
				return tpl
			}(),
			reason: "orchestration registration is PENDING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewRun("flow-1", "tenantCreation", tt.template, nil, testNow)
			assert.Equal(t, RunStatusNotRegistered, run.Status)
			assert.Empty(t, run.Steps)
			assert.Empty(t, run.Dispatches())
			require.Len(t, run.Transitions(), 1)
			assert.Equal(t, AuditOrchestrationNotRegistered, run.Transitions()[0].Type)
			assert.Equal(t, tt.reason, run.Transitions()[0].Reason)
		})
	}
}

func TestRun_Restart(t *testing.T) {
	run := NewRun("flow-1", "tenantCreation", nil, json.RawMessage(`{"a":1}`), testNow)
	run.ClearPending()

	template := registeredTemplate(ExecutionTypeSequential, 1, "createRealm")
	require.NoError(t, run.Restart(template, nil, testNow.Add(time.Hour)))

	assert.Equal(t, RunStatusInProgress, run.Status)
	assert.Equal(t, testNow.Add(time.Hour), run.StartedAt)
	assert.JSONEq(t, `{"a":1}`, string(run.Payload))
	assert.Equal(t, []string{"tenantCreation-createRealm-do"}, dispatchedTopics(run))

	err := run.Restart(template, nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRun_SequentialHappyPath(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 3, "createRealm", "createClient")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	run.ClearPending()

	apply(t, run, ok("createRealm"))
	assert.Equal(t, StepStatusDoSuccess, run.Step("createRealm").Status)
	assert.Equal(t, []string{"tenantCreation-createClient-do"}, dispatchedTopics(run))
	assert.Equal(t, RunStatusInProgress, run.Status)
	run.ClearPending()

	apply(t, run, ok("createClient"))
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.NotNil(t, run.CompletedAt)
	assert.Empty(t, run.Dispatches())
	assert.Equal(t, []AuditEventType{AuditStepSuccess, AuditOrchestrationCompleted}, transitionTypes(run))
	assert.True(t, run.IsFinished())
}

func TestRun_RetryExhaustionCompensates(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 3, "createRealm", "createClient")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("createRealm"))
	run.ClearPending()

	// the first failure and three retries
	for i := 1; i <= 3; i++ {
		apply(t, run, fail("createClient"))
		step := run.Step("createClient")
		assert.Equal(t, StepStatusInProgress, step.Status)
		assert.Equal(t, i, step.RetryCount)
		assert.LessOrEqual(t, step.RetryCount, step.MaxRetries)
		require.Len(t, run.Dispatches(), 1)
		assert.Equal(t, "tenantCreation-createClient-do", run.Dispatches()[0].Topic)
		assert.Equal(t, time.Second, run.Dispatches()[0].Delay)
		assert.Equal(t, []AuditEventType{AuditRetryTriggered}, transitionTypes(run))
		run.ClearPending()
	}

	apply(t, run, fail("createClient"))
	assert.Equal(t, StepStatusRetryExhausted, run.Step("createClient").Status)
	assert.Equal(t, RunStatusUndoing, run.Status)
	assert.Equal(t, StepStatusUndoing, run.Step("createRealm").Status)
	assert.Equal(t, []string{"tenantCreation-createRealm-undo"}, dispatchedTopics(run))
	assert.Equal(t, []AuditEventType{
		AuditStepFailed, AuditOrchestrationFailed, AuditRollbackTriggered, AuditRollbackStarted, AuditUndoStarted,
	}, transitionTypes(run))
	run.ClearPending()

	apply(t, run, undone("createRealm"))
	assert.Equal(t, RunStatusUndone, run.Status)
	assert.Equal(t, StepStatusUndoSuccess, run.Step("createRealm").Status)
	assert.Equal(t, []AuditEventType{AuditUndoCompleted, AuditRollbackCompleted}, transitionTypes(run))
}

func TestRun_FailStepVeto(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 3, "createRealm", "createClient")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("createRealm"))
	run.ClearPending()

	apply(t, run, StepResponse{StepName: "createClient", Action: ActionFailStep, Error: "tenant quota exceeded"})

	step := run.Step("createClient")
	assert.Equal(t, StepStatusFailed, step.Status)
	assert.Equal(t, 0, step.RetryCount)
	assert.Equal(t, "tenant quota exceeded", step.ErrorMessage)
	assert.Equal(t, RunStatusUndoing, run.Status)
	assert.Equal(t, []string{"tenantCreation-createRealm-undo"}, dispatchedTopics(run))
}

func TestRun_SimultaneousCompletion(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSimultaneous, 1, "a", "b", "c")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)

	assert.Len(t, run.Dispatches(), 3)
	assert.Len(t, run.ActiveSteps(), 3)

	apply(t, run, ok("a"), ok("c"))
	assert.Equal(t, RunStatusInProgress, run.Status)
	assert.Equal(t, StepStatusInProgress, run.Step("b").Status)

	apply(t, run, ok("b"))
	assert.Equal(t, RunStatusCompleted, run.Status)
}

func TestCompensation_SequentialReverseOrder(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 0, "s1", "s2", "s3", "s4")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("s1"), ok("s2"), ok("s3"))
	run.ClearPending()

	apply(t, run, fail("s4"))
	assert.Equal(t, []string{"tenantCreation-s3-undo"}, dispatchedTopics(run))
	run.ClearPending()

	apply(t, run, undone("s3"))
	assert.Equal(t, []string{"tenantCreation-s2-undo"}, dispatchedTopics(run))
	assert.Equal(t, StepStatusDoSuccess, run.Step("s1").Status)
	run.ClearPending()

	apply(t, run, undone("s2"))
	assert.Equal(t, []string{"tenantCreation-s1-undo"}, dispatchedTopics(run))
	run.ClearPending()

	apply(t, run, undone("s1"))
	assert.Equal(t, RunStatusUndone, run.Status)

	// every step that ever succeeded is compensated
	for _, name := range []string{"s1", "s2", "s3"} {
		assert.Equal(t, StepStatusUndoSuccess, run.Step(name).Status, name)
	}
	assert.Equal(t, StepStatusRetryExhausted, run.Step("s4").Status)
}

func TestCompensation_SimultaneousUndoesTogether(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSimultaneous, 0, "a", "b", "c")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("a"), ok("b"))
	run.ClearPending()

	apply(t, run, fail("c"))
	assert.ElementsMatch(t, []string{"tenantCreation-a-undo", "tenantCreation-b-undo"}, dispatchedTopics(run))
	assert.Equal(t, RunStatusUndoing, run.Status)

	apply(t, run, undone("b"))
	assert.Equal(t, RunStatusUndoing, run.Status)
	apply(t, run, undone("a"))
	assert.Equal(t, RunStatusUndone, run.Status)
}

func TestCompensation_LateSuccessIsCompensated(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSimultaneous, 0, "a", "b", "c")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("a"))
	run.ClearPending()

	apply(t, run, fail("c"))
	assert.Equal(t, []string{"tenantCreation-a-undo"}, dispatchedTopics(run))
	run.ClearPending()

	apply(t, run, undone("a"))
	assert.Equal(t, RunStatusUndoing, run.Status, "b is still in flight")

	apply(t, run, ok("b"))
	assert.Equal(t, []string{"tenantCreation-b-undo"}, dispatchedTopics(run))
	apply(t, run, undone("b"))
	assert.Equal(t, RunStatusUndone, run.Status)
}

func TestCompensation_NothingToCompensate(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 0, "createRealm", "createClient")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	run.ClearPending()

	apply(t, run, fail("createRealm"))
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Empty(t, run.Dispatches())

	transitions := run.Transitions()
	last := transitions[len(transitions)-1]
	assert.Equal(t, AuditRollbackCompleted, last.Type)
	assert.Equal(t, "nothing to compensate", last.Reason)
	assert.True(t, run.IsFinished())
}

func TestCompensation_UndoExhaustionLeavesRunFailed(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 1, "s1", "s2", "s3")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("s1"), ok("s2"), fail("s3"), fail("s3"))
	require.Equal(t, RunStatusUndoing, run.Status)
	assert.Equal(t, 0, run.Step("s2").RetryCount)
	run.ClearPending()

	apply(t, run, undoFailed("s2"))
	assert.Equal(t, StepStatusUndoing, run.Step("s2").Status)
	assert.Equal(t, 1, run.Step("s2").RetryCount)
	assert.Equal(t, []string{"tenantCreation-s2-undo"}, dispatchedTopics(run))
	run.ClearPending()

	apply(t, run, undoFailed("s2"))
	assert.Equal(t, StepStatusUndoFail, run.Step("s2").Status)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, StepStatusDoSuccess, run.Step("s1").Status, "compensation stops at the stuck step")
	assert.Empty(t, run.Dispatches())
	assert.Equal(t, []AuditEventType{AuditUndoFailed, AuditOrchestrationFailed}, transitionTypes(run))
	assert.Contains(t, run.Transitions()[1].Reason, "operator action required")
}

func TestCompensation_LateSuccessAfterUndoExhaustion(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSimultaneous, 0, "a", "b", "c")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	apply(t, run, ok("a"), fail("b"), undoFailed("a"))
	require.Equal(t, RunStatusFailed, run.Status)
	require.Equal(t, StepStatusUndoFail, run.Step("a").Status)
	require.Equal(t, StepStatusInProgress, run.Step("c").Status)
	run.ClearPending()

	apply(t, run, ok("c"))
	assert.Equal(t, RunStatusFailed, run.Status, "an exhausted undo keeps the run stuck")
	assert.Equal(t, StepStatusUndoing, run.Step("c").Status)
	assert.Equal(t, []string{"tenantCreation-c-undo"}, dispatchedTopics(run))
	assert.Equal(t, []AuditEventType{AuditStepSuccess, AuditUndoStarted}, transitionTypes(run))
	run.ClearPending()

	apply(t, run, undone("c"))
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, StepStatusUndoSuccess, run.Step("c").Status)
	assert.Equal(t, []AuditEventType{AuditUndoCompleted}, transitionTypes(run))
}

func TestHandleResponse_Fencing(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 2, "createRealm", "createClient")

	tests := []struct {
		name    string
		prepare func(run *OrchestrationRun)
		resp    StepResponse
		wantErr error
	}{
		{
			name: "superseded attempt",
			prepare: func(run *OrchestrationRun) {
				apply(t, run, fail("createRealm"))
			},
			resp:    StepResponse{StepName: "createRealm", Action: ActionDo, Success: true, Attempt: 1},
			wantErr: ErrStaleResponse,
		},
		{
			name:    "duplicate success",
			prepare: func(run *OrchestrationRun) { apply(t, run, ok("createRealm")) },
			resp:    ok("createRealm"),
			wantErr: ErrStaleResponse,
		},
		{
			name:    "undo response for step that is not undoing",
			prepare: func(run *OrchestrationRun) {},
			resp:    undone("createRealm"),
			wantErr: ErrStaleResponse,
		},
		{
			name:    "response for pending step",
			prepare: func(run *OrchestrationRun) {},
			resp:    ok("createClient"),
			wantErr: ErrStaleResponse,
		},
		{
			name:    "unknown step",
			prepare: func(run *OrchestrationRun) {},
			resp:    ok("deleteRealm"),
			wantErr: ErrStepNotFound,
		},
		{
			name: "current attempt accepted",
			prepare: func(run *OrchestrationRun) {
				apply(t, run, fail("createRealm"))
			},
			resp: StepResponse{StepName: "createRealm", Action: ActionDo, Success: true, Attempt: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
			tt.prepare(run)
			run.ClearPending()
			before := *run.Step("createRealm")

			err := run.HandleResponse(tt.resp, 0, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, *run.Step("createRealm"))
				assert.Empty(t, run.Dispatches())
				assert.Empty(t, run.Transitions())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandleResponse_RetryBound(t *testing.T) {
	for maxRetries := 0; maxRetries <= 3; maxRetries++ {
		template := registeredTemplate(ExecutionTypeSequential, maxRetries, "only")
		run := NewRun("flow-1", "tenantCreation", template, nil, testNow)

		attempts := 0
		for run.Step("only").Status == StepStatusInProgress {
			attempts++
			apply(t, run, fail("only"))
			assert.LessOrEqual(t, run.Step("only").RetryCount, maxRetries)
		}

		assert.Equal(t, maxRetries+1, attempts)
		assert.Equal(t, StepStatusRetryExhausted, run.Step("only").Status)
		assert.Equal(t, maxRetries+1, run.Step("only").Attempt)
	}
}

func TestDispatch_FailureResponse(t *testing.T) {
	template := registeredTemplate(ExecutionTypeSequential, 1, "createRealm")
	run := NewRun("flow-1", "tenantCreation", template, nil, testNow)
	dispatch := run.Dispatches()[0]
	run.ClearPending()

	resp := dispatch.FailureResponse(assert.AnError)
	require.NoError(t, run.HandleResponse(resp, 0, testNow))
	assert.Equal(t, 1, run.Step("createRealm").RetryCount)
	assert.Contains(t, run.Step("createRealm").ErrorMessage, "dispatch failed")
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{in: "", want: ActionDo},
		{in: "do", want: ActionDo},
		{in: "UNDO", want: ActionUndo},
		{in: "fail_step", want: ActionFailStep},
		{in: "REDO", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAction(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
