// Package response renders the unified API envelope: a business code,
// a message, an optional payload, and request tracing fields.
package response

import (
	"net/http"

	"github.com/ariel1441/ai-rag-project-sub000/pkg/utils/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	// Code is the business error code; 0 means success.
	Code int `json:"code"`

	// Message describes the outcome for humans.
	Message string `json:"message"`

	// Data carries the payload on success, nil on errors.
	Data interface{} `json:"data,omitempty"`

	// RequestID echoes the request id for log correlation.
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is when the response was written, Unix milliseconds.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data interface{}) *Response {
	return &Response{Message: "success", Data: data}
}

// Err builds an error envelope from an Errno. A nil Errno is success.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{Code: e.Code, Message: e.MessageEN}
}

// WithRequestID sets the request id and returns the response.
func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

// WithTimestamp sets the timestamp and returns the response.
func (r *Response) WithTimestamp(ts int64) *Response {
	r.Timestamp = ts
	return r
}

// HTTPStatus resolves the HTTP status for the envelope from the errno
// registry. Unregistered non-zero codes map to 500.
func (r *Response) HTTPStatus() int {
	if r.Code == 0 {
		return http.StatusOK
	}
	if e, ok := errors.Lookup(r.Code); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
