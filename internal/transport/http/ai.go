package http

import (
	"net/http"

	"github.com/Raisondetr3/taskflow-service/pkg/dto"
)

func (h *HTTPHandlers) HandleSuggestTasks(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestTasksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := h.suggest.SuggestTasks(r.Context(), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *HTTPHandlers) HandleSuggestResources(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestResourcesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resources, err := h.suggest.SuggestResources(r.Context(), req.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"resources": resources})
}
