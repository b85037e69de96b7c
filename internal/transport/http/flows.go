package http

import (
	"net/http"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/gorilla/mux"
)

func (h *HTTPHandlers) HandleListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := h.flows.ListFlows(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, flows)
}

func (h *HTTPHandlers) HandleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFlowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	flow, err := h.flows.CreateFlow(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, flow)
}

func (h *HTTPHandlers) HandleGetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.flows.GetFlow(r.Context(), mux.Vars(r)["flowID"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, flow)
}

func (h *HTTPHandlers) HandleRenameFlow(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameFlowRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	flow, err := h.flows.RenameFlow(r.Context(), mux.Vars(r)["flowID"], req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, flow)
}

func (h *HTTPHandlers) HandleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := h.flows.DeleteFlow(r.Context(), mux.Vars(r)["flowID"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) HandleAddTask(w http.ResponseWriter, r *http.Request) {
	var in model.TaskInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.flows.AddTask(r.Context(), mux.Vars(r)["flowID"], in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, task)
}

func (h *HTTPHandlers) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch model.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}

	vars := mux.Vars(r)
	task, err := h.flows.UpdateTask(r.Context(), vars["flowID"], vars["taskID"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, task)
}

func (h *HTTPHandlers) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.flows.DeleteTask(r.Context(), vars["flowID"], vars["taskID"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlers) HandleReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req dto.ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	flow, err := h.flows.ReorderTasks(r.Context(), mux.Vars(r)["flowID"], req.From, req.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, flow)
}

func (h *HTTPHandlers) HandleToggleTask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := h.flows.ToggleTask(r.Context(), vars["flowID"], vars["taskID"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
