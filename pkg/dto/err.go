package dto

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the body of every failed HTTP request.
type ErrorResponse struct {
	Message string    `json:"message"`
	Code    string    `json:"code,omitempty"`
	Time    time.Time `json:"time"`
}

func NewErr(code, msg string) ErrorResponse {
	return ErrorResponse{
		Message: msg,
		Code:    code,
		Time:    time.Now(),
	}
}

func (e ErrorResponse) ToString() string {
	b, err := json.Marshal(e)
	if err != nil {
		return ""
	}

	return string(b)
}
