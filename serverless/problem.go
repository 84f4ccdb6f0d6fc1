package serverless

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail is a basic RFC 9457 Problem Details
// (https://datatracker.ietf.org/doc/html/rfc9457) error body, used for
// every error-class response the pipeline produces so clients get a
// consistent, machine-readable shape instead of a bare status line.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Status int    `json:"status,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Error satisfies the error interface so a ProblemDetail can be returned
// or logged directly.
func (p *ProblemDetail) Error() string {
	return p.Detail
}

// problemResponse builds the wire Response for an error-class pipeline
// outcome: httpStatus is the mapped status family, title is the default
// summary for that family (http.StatusText), and detail is the failed
// status's short message; the status's description is not included.
func problemResponse(httpStatus int, detail string) Response {
	title := http.StatusText(httpStatus)
	if title == "" {
		title = "Error"
	}

	body, err := json.Marshal(&ProblemDetail{
		Title:  title,
		Status: httpStatus,
		Detail: detail,
	})
	if err != nil {
		body = []byte(`{"title":"Error"}`)
	}

	return Response{
		Status:  httpStatus,
		Headers: map[string]string{"Content-Type": "application/problem+json"},
		Body:    body,
	}
}
