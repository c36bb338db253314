package nitro

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Response contains the status fields every NITRO response carries.
type Response struct {
	ErrorCode int    `json:"errorcode"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}

// Err returns an error if the response signals one.
func (r *Response) Err() error {
	if r.ErrorCode == 0 {
		return nil
	}

	return &APIError{ErrorCode: r.ErrorCode, Message: r.Message, Severity: r.Severity}
}

// APIError is an error reported by the appliance.
type APIError struct {
	ErrorCode int
	Message   string
	Severity  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nitro error %d: %s", e.ErrorCode, e.Message)
}

// HTTPError is returned for non 2xx responses.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	API        *APIError
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("http %s %s: %s", e.Method, e.URL, e.Status)
	if e.API != nil {
		msg += " (" + e.API.Error() + ")"
	}

	return msg
}

func (e *HTTPError) Unwrap() error {
	if e.API == nil {
		return nil
	}

	return e.API
}

func newHTTPError(method, url string, resp *http.Response) *HTTPError {
	httpErr := &HTTPError{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return httpErr
	}

	var status Response
	if err := json.Unmarshal(data, &status); err == nil && status.ErrorCode != 0 {
		httpErr.API = &APIError{ErrorCode: status.ErrorCode, Message: status.Message, Severity: status.Severity}
	}

	return httpErr
}
