package handlers

import (
	"encoding/json"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
)

// TemplateResponse represents an orchestration topology in API responses
type TemplateResponse struct {
	Name             string         `json:"name"`
	ExecutionType    string         `json:"executionType"`
	InitiatorService string         `json:"initiatorService"`
	Status           string         `json:"status"`
	FailureReason    string         `json:"failureReason,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	Steps            []StepResponse `json:"steps,omitempty"`
}

// StepResponse represents a topology step and its workers
type StepResponse struct {
	Sequence   int      `json:"sequence"`
	StepName   string   `json:"stepName"`
	ObjectType string   `json:"objectType"`
	DoTopic    string   `json:"doTopic"`
	UndoTopic  string   `json:"undoTopic"`
	MaxRetries int      `json:"maxRetries"`
	Registered bool     `json:"registered"`
	Workers    []string `json:"workers,omitempty"`
}

// PageResponse wraps one page of a listing
type PageResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

// RegistrationAuditResponse represents one registration attempt
type RegistrationAuditResponse struct {
	ID             string    `json:"id"`
	Role           string    `json:"role"`
	ServiceName    string    `json:"serviceName"`
	Status         string    `json:"status"`
	SubmittedSteps []string  `json:"submittedSteps"`
	FailedSteps    []string  `json:"failedSteps"`
	Reason         string    `json:"reason,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RunResponse represents an orchestration run
type RunResponse struct {
	FlowID            string            `json:"flowId"`
	OrchestrationName string            `json:"orchestrationName"`
	ExecutionType     string            `json:"executionType"`
	Status            string            `json:"status"`
	Payload           json.RawMessage   `json:"payload,omitempty"`
	StartedAt         time.Time         `json:"startedAt"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	Steps             []StepRunResponse `json:"steps,omitempty"`
}

// StepRunResponse represents the execution state of one step
type StepRunResponse struct {
	StepName      string     `json:"stepName"`
	Sequence      int        `json:"sequence"`
	Status        string     `json:"status"`
	WorkerService string     `json:"workerService,omitempty"`
	RetryCount    int        `json:"retryCount"`
	MaxRetries    int        `json:"maxRetries"`
	Attempt       int        `json:"attempt"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	LastRetriedAt *time.Time `json:"lastRetriedAt,omitempty"`
	UndoneAt      *time.Time `json:"undoneAt,omitempty"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
}

// TimelineResponse represents the audit trail of a run
type TimelineResponse struct {
	FlowID            string                 `json:"flowId"`
	OrchestrationName string                 `json:"orchestrationName"`
	Events            []AuditEventResponse   `json:"events"`
	Summary           domain.TimelineSummary `json:"summary"`
}

// AuditEventResponse represents one audit event
type AuditEventResponse struct {
	ID            string                 `json:"id"`
	EntityType    string                 `json:"entityType"`
	StepName      string                 `json:"stepName,omitempty"`
	EventType     string                 `json:"eventType"`
	Status        string                 `json:"status"`
	Timestamp     time.Time              `json:"timestamp"`
	Reason        string                 `json:"reason,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
	OperationType string                 `json:"operationType,omitempty"`
	DurationMs    int64                  `json:"durationMs,omitempty"`
	RetryCount    int                    `json:"retryCount"`
}

func newTemplateResponse(template *domain.OrchestrationTemplate, detail *application.OrchestrationDetail) TemplateResponse {
	response := TemplateResponse{
		Name:             template.Name,
		ExecutionType:    string(template.ExecutionType),
		InitiatorService: template.InitiatorService,
		Status:           string(template.Status),
		FailureReason:    template.FailureReason,
		CreatedAt:        template.Timestamps.CreatedAt,
		UpdatedAt:        template.Timestamps.UpdatedAt,
	}

	for _, step := range template.Steps {
		stepResponse := StepResponse{
			Sequence:   step.Sequence,
			StepName:   step.StepName,
			ObjectType: step.ObjectType,
			DoTopic:    step.DoTopic,
			UndoTopic:  step.UndoTopic,
			MaxRetries: step.MaxRetries,
		}
		if detail != nil {
			stepResponse.Registered = detail.Covered(step.StepName)
			for _, worker := range detail.Workers[step.StepName] {
				stepResponse.Workers = append(stepResponse.Workers, worker.ServiceName)
			}
		}
		response.Steps = append(response.Steps, stepResponse)
	}
	return response
}

func newRegistrationAuditResponse(audit *domain.RegistrationAudit) RegistrationAuditResponse {
	return RegistrationAuditResponse{
		ID:             audit.ID.String(),
		Role:           string(audit.Role),
		ServiceName:    audit.ServiceName,
		Status:         string(audit.Status),
		SubmittedSteps: nonNil(audit.SubmittedSteps),
		FailedSteps:    nonNil(audit.FailedSteps),
		Reason:         audit.Reason,
		CreatedAt:      audit.CreatedAt,
	}
}

func newRunResponse(run *domain.OrchestrationRun, withSteps bool) RunResponse {
	response := RunResponse{
		FlowID:            run.FlowID.String(),
		OrchestrationName: run.OrchestrationName,
		ExecutionType:     string(run.ExecutionType),
		Status:            string(run.Status),
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		UpdatedAt:         run.UpdatedAt,
	}
	if !withSteps {
		return response
	}

	response.Payload = run.Payload
	for _, step := range run.Steps {
		response.Steps = append(response.Steps, StepRunResponse{
			StepName:      step.StepName,
			Sequence:      step.Sequence,
			Status:        string(step.Status),
			WorkerService: step.WorkerService,
			RetryCount:    step.RetryCount,
			MaxRetries:    step.MaxRetries,
			Attempt:       step.Attempt,
			StartedAt:     step.StartedAt,
			CompletedAt:   step.CompletedAt,
			LastRetriedAt: step.LastRetriedAt,
			UndoneAt:      step.UndoneAt,
			ErrorMessage:  step.ErrorMessage,
		})
	}
	return response
}

func newTimelineResponse(timeline *domain.Timeline) TimelineResponse {
	response := TimelineResponse{
		FlowID:            timeline.FlowID.String(),
		OrchestrationName: timeline.OrchestrationName,
		Events:            make([]AuditEventResponse, 0, len(timeline.Events)),
		Summary:           timeline.Summary,
	}
	for _, event := range timeline.Events {
		response.Events = append(response.Events, AuditEventResponse{
			ID:            event.ID.String(),
			EntityType:    string(event.EntityType),
			StepName:      event.StepName,
			EventType:     string(event.EventType),
			Status:        event.Status,
			Timestamp:     event.Timestamp,
			Reason:        event.Reason,
			Details:       event.Details,
			OperationType: string(event.OperationType),
			DurationMs:    event.DurationMs,
			RetryCount:    event.RetryCount,
		})
	}
	return response
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
