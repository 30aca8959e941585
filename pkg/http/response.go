package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

// maxErrorBody caps how much of an error response is kept for messages
const maxErrorBody = 4 << 10

// RetryableStatusCodes are transient failures worth another attempt
var RetryableStatusCodes = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Problem is an RFC 7807 problem document, the error body of the X API
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

// StatusError is a non-200 response
type StatusError struct {
	StatusCode int
	// Problem is set when the body was a problem document
	Problem *Problem
	// Body holds the start of any other body
	Body string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("unexpected status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	switch {
	case e.Problem != nil && e.Problem.Detail != "":
		return msg + ": " + e.Problem.Title + ": " + e.Problem.Detail
	case e.Problem != nil:
		return msg + ": " + e.Problem.Title
	case e.Body != "":
		return msg + ": " + e.Body
	}
	return msg
}

// EnsureStatusOK returns a *StatusError unless the response status is 200 OK.
// The body is not closed.
func EnsureStatusOK(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	err := &StatusError{StatusCode: resp.StatusCode}
	if resp.Body == nil {
		return err
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var problem Problem
	if json.Unmarshal(body, &problem) == nil && problem.Title != "" {
		err.Problem = &problem
	} else {
		err.Body = strings.TrimSpace(string(body))
	}
	return err
}

// IsRetryableStatusCode determines if an HTTP status code should be retried
func IsRetryableStatusCode(statusCode int) bool {
	return slices.Contains(RetryableStatusCodes, statusCode)
}
