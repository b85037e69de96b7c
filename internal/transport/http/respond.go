package http

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogError(r.Context(), err, "encode_response")
	}
}

func writeText(w http.ResponseWriter, code int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

// writeError maps service errors onto their HTTP status. Anything that is not
// a ServiceError is reported as a 500 without leaking its text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *errors.ServiceError
	if !stderrors.As(err, &svcErr) {
		logger.LogError(r.Context(), err, "unexpected_handler_error")
		svcErr = errors.ErrInternalError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.HTTPStatus())
	_, _ = io.WriteString(w, dto.NewErr(svcErr.Code.String(), svcErr.Message).ToString())
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errors.NewServiceError(errors.ErrInvalidBody.Code, errors.ErrInvalidBody.Message+": "+err.Error())
	}
	return nil
}

// instantParam reads the optional ?at= override. A missing value yields the
// zero time, which the services treat as now.
func instantParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("at")
	if raw == "" {
		return time.Time{}, nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.ErrInvalidInstant
	}
	return at, nil
}
