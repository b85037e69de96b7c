package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *HTTPHandlers) HandleFlowStatus(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.schedule.FlowStatus(r.Context(), mux.Vars(r)["flowID"], at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, status)
}

func (h *HTTPHandlers) HandleToday(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.schedule.Today(r.Context(), at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, items)
}

func (h *HTTPHandlers) HandleTaskCalendar(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	vars := mux.Vars(r)
	cal, err := h.schedule.TaskCalendar(r.Context(), vars["flowID"], vars["taskID"], r.URL.Query().Get("month"), at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cal)
}

func (h *HTTPHandlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	analytics, err := h.schedule.Analytics(r.Context(), mux.Vars(r)["flowID"], q.Get("from"), q.Get("to"), at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, analytics)
}

func (h *HTTPHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.schedule.Report(r.Context(), mux.Vars(r)["flowID"], at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, "text/plain; charset=utf-8", text)
}

func (h *HTTPHandlers) HandleExportICS(w http.ResponseWriter, r *http.Request) {
	at, err := instantParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	vars := mux.Vars(r)
	ics, err := h.schedule.ExportICS(r.Context(), vars["flowID"], vars["taskID"], at)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
	writeText(w, http.StatusOK, "text/calendar; charset=utf-8", ics)
}
