package http

import (
	"net/http"

	"github.com/Raisondetr3/taskflow-service/internal/config"
	"github.com/Raisondetr3/taskflow-service/internal/service"
	"github.com/gorilla/mux"
)

type HTTPHandlers struct {
	config   *config.Config
	health   service.HealthService
	flows    service.FlowService
	schedule service.ScheduleService
	suggest  service.SuggestionService
}

func NewHTTPHandlers(
	cfg *config.Config,
	healthService service.HealthService,
	flowService service.FlowService,
	scheduleService service.ScheduleService,
	suggestionService service.SuggestionService,
) *HTTPHandlers {
	return &HTTPHandlers{
		config:   cfg,
		health:   healthService,
		flows:    flowService,
		schedule: scheduleService,
		suggest:  suggestionService,
	}
}

func (h *HTTPHandlers) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/today", h.HandleToday).Methods(http.MethodGet)
	api.HandleFunc("/ai/tasks", h.HandleSuggestTasks).Methods(http.MethodPost)
	api.HandleFunc("/ai/resources", h.HandleSuggestResources).Methods(http.MethodPost)

	api.HandleFunc("/flows", h.HandleListFlows).Methods(http.MethodGet)
	api.HandleFunc("/flows", h.HandleCreateFlow).Methods(http.MethodPost)
	api.HandleFunc("/flows/{flowID}", h.HandleGetFlow).Methods(http.MethodGet)
	api.HandleFunc("/flows/{flowID}", h.HandleRenameFlow).Methods(http.MethodPatch)
	api.HandleFunc("/flows/{flowID}", h.HandleDeleteFlow).Methods(http.MethodDelete)

	api.HandleFunc("/flows/{flowID}/status", h.HandleFlowStatus).Methods(http.MethodGet)
	api.HandleFunc("/flows/{flowID}/analytics", h.HandleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/flows/{flowID}/report", h.HandleReport).Methods(http.MethodGet)

	// reorder must win over the {taskID} routes
	api.HandleFunc("/flows/{flowID}/tasks/reorder", h.HandleReorderTasks).Methods(http.MethodPost)
	api.HandleFunc("/flows/{flowID}/tasks", h.HandleAddTask).Methods(http.MethodPost)
	api.HandleFunc("/flows/{flowID}/tasks/{taskID}", h.HandleUpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/flows/{flowID}/tasks/{taskID}", h.HandleDeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/flows/{flowID}/tasks/{taskID}/toggle", h.HandleToggleTask).Methods(http.MethodPost)
	api.HandleFunc("/flows/{flowID}/tasks/{taskID}/calendar", h.HandleTaskCalendar).Methods(http.MethodGet)
	api.HandleFunc("/flows/{flowID}/tasks/{taskID}/calendar.ics", h.HandleExportICS).Methods(http.MethodGet)
}
