package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/draftea/saga-orchestrator/orchestrator-service/application"
	"github.com/draftea/saga-orchestrator/orchestrator-service/domain"
	"github.com/draftea/saga-orchestrator/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ServiceNameHeader identifies the calling service on registration requests
const ServiceNameHeader = "X-Service-Name"

// OrchestratorHandlers contains orchestrator HTTP handlers
type OrchestratorHandlers struct {
	registerOrchestration *application.RegisterOrchestration
	startOrchestration    *application.StartOrchestration
	getTimeline           *application.GetTimeline
	queries               *application.Queries
	log                   *zap.Logger
}

// NewOrchestratorHandlers creates new orchestrator handlers
func NewOrchestratorHandlers(
	registerOrchestration *application.RegisterOrchestration,
	startOrchestration *application.StartOrchestration,
	getTimeline *application.GetTimeline,
	queries *application.Queries,
	log *zap.Logger,
) *OrchestratorHandlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrchestratorHandlers{
		registerOrchestration: registerOrchestration,
		startOrchestration:    startOrchestration,
		getTimeline:           getTimeline,
		queries:               queries,
		log:                   log,
	}
}

// RegisterOrchestration handles synchronous registration requests
func (h *OrchestratorHandlers) RegisterOrchestration(w http.ResponseWriter, r *http.Request) {
	var registration domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&registration); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd := &application.RegistrationCommand{
		Registration: registration,
		ServiceName:  strings.TrimSpace(r.Header.Get(ServiceNameHeader)),
	}

	result, err := h.registerOrchestration.Execute(r.Context(), cmd)
	if err != nil {
		if result != nil {
			h.writeJSON(w, statusFor(err), result)
			return
		}
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// ListOrchestrations handles topology listing requests
func (h *OrchestratorHandlers) ListOrchestrations(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	from, to, err := parseRange(params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	page, err := parsePage(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.queries.ListOrchestrations(r.Context(), domain.TemplateFilter{
		Name:          params.Get("name"),
		Status:        domain.RegistrationStatus(strings.ToUpper(params.Get("status"))),
		ExecutionType: domain.ExecutionType(strings.ToUpper(params.Get("type"))),
		From:          from,
		To:            to,
		Page:          page,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]TemplateResponse, 0, len(result.Items))
	for _, template := range result.Items {
		items = append(items, newTemplateResponse(template, nil))
	}
	h.writeJSON(w, http.StatusOK, PageResponse{Items: items, Total: result.Total, Page: result.Page.Number, Size: result.Page.Size})
}

// GetOrchestration handles topology detail requests
func (h *OrchestratorHandlers) GetOrchestration(w http.ResponseWriter, r *http.Request) {
	detail, err := h.queries.GetOrchestration(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newTemplateResponse(detail.Template, detail))
}

// ListRegistrations handles registration history requests
func (h *OrchestratorHandlers) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	audits, err := h.queries.ListRegistrationHistory(r.Context(), chi.URLParam(r, "name"), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]RegistrationAuditResponse, 0, len(audits))
	for _, audit := range audits {
		items = append(items, newRegistrationAuditResponse(audit))
	}
	h.writeJSON(w, http.StatusOK, items)
}

// ListExecutions handles run listing requests for one orchestration
func (h *OrchestratorHandlers) ListExecutions(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	from, to, err := parseRange(params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	page, err := parsePage(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.queries.ListExecutions(r.Context(), domain.RunFilter{
		OrchestrationName: chi.URLParam(r, "name"),
		Status:            domain.RunStatus(strings.ToUpper(params.Get("status"))),
		From:              from,
		To:                to,
		Page:              page,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	items := make([]RunResponse, 0, len(result.Items))
	for _, run := range result.Items {
		items = append(items, newRunResponse(run, false))
	}
	h.writeJSON(w, http.StatusOK, PageResponse{Items: items, Total: result.Total, Page: result.Page.Number, Size: result.Page.Size})
}

// StartExecution handles asynchronous start requests
func (h *OrchestratorHandlers) StartExecution(w http.ResponseWriter, r *http.Request) {
	var cmd application.StartOrchestrationCommand
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}
	cmd.OrchestrationName = chi.URLParam(r, "name")

	response, err := h.startOrchestration.Execute(r.Context(), &cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response)
}

// GetExecution handles run detail requests
func (h *OrchestratorHandlers) GetExecution(w http.ResponseWriter, r *http.Request) {
	run, err := h.queries.GetExecution(r.Context(), models.ID(chi.URLParam(r, "flowId")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newRunResponse(run, true))
}

// GetTimeline handles audit timeline requests
func (h *OrchestratorHandlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	from, to, err := parseRange(params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	timeline, err := h.getTimeline.Execute(r.Context(), &application.GetTimelineQuery{
		FlowID: models.ID(chi.URLParam(r, "flowId")),
		Filter: domain.TimelineFilter{
			EventType: domain.AuditEventType(strings.ToUpper(params.Get("eventType"))),
			Status:    strings.ToUpper(params.Get("status")),
			From:      from,
			To:        to,
		},
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newTimelineResponse(timeline))
}

// Health reports liveness
func (h *OrchestratorHandlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes registers orchestrator routes
func (h *OrchestratorHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Route("/orchestrations", func(r chi.Router) {
		r.Get("/", h.ListOrchestrations)
		r.Post("/registrations", h.RegisterOrchestration)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.GetOrchestration)
			r.Get("/registrations", h.ListRegistrations)
			r.Get("/executions", h.ListExecutions)
			r.Post("/executions", h.StartExecution)
		})
	})
	r.Route("/executions/{flowId}", func(r chi.Router) {
		r.Get("/", h.GetExecution)
		r.Get("/timeline", h.GetTimeline)
	})
}

func (h *OrchestratorHandlers) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func (h *OrchestratorHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidRegistration),
		errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrchestrationNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrTimelineNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parseRange(params map[string][]string) (*time.Time, *time.Time, error) {
	from, err := parseTime(params, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := parseTime(params, "to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseTime(params map[string][]string, key string) (*time.Time, error) {
	values := params[key]
	if len(values) == 0 || values[0] == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, values[0])
	if err != nil {
		return nil, errors.Wrapf(domain.ErrInvalidQuery, "%s must be an RFC3339 timestamp", key)
	}
	return &t, nil
}

func parsePage(params map[string][]string) (models.Page, error) {
	var page models.Page
	for key, target := range map[string]*int{"page": &page.Number, "size": &page.Size} {
		values := params[key]
		if len(values) == 0 || values[0] == "" {
			continue
		}
		n, err := strconv.Atoi(values[0])
		if err != nil || n < 0 {
			return models.Page{}, errors.Wrapf(domain.ErrInvalidQuery, "%s must be a non-negative integer", key)
		}
		*target = n
	}
	return page, nil
}
