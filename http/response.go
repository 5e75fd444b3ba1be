package http

import (
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"
)

// Response is an immutable snapshot of a completed exchange
type Response struct {
	StatusCode    int
	StatusMessage string // reason phrase, e.g. "Not Found"
	Protocol      string // e.g. "HTTP/1.1"
	// Headers maps canonical header names to their last received value
	Headers map[string]string
	// Body is nil when the response carries no entity (HEAD, 204, 304)
	Body    *string
	Elapsed time.Duration
}

// StatusLine renders "<protocol> <code> <reason>", e.g. "HTTP/1.1 200 OK".
func (r *Response) StatusLine() string {
	return fmt.Sprintf("%s %d %s", r.Protocol, r.StatusCode, r.StatusMessage)
}

// Header looks name up case-insensitively. A blank name is never found.
func (r *Response) Header(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	v, ok := r.Headers[nethttp.CanonicalHeaderKey(name)]
	return v, ok
}

// BodyString returns the body, or "" when there is none.
func (r *Response) BodyString() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return IsSuccessStatus(r.StatusCode)
}

func newResponse(method string, httpResp *nethttp.Response, start time.Time) (*Response, error) {
	resp := &Response{
		StatusCode:    httpResp.StatusCode,
		StatusMessage: reasonPhrase(httpResp),
		Protocol:      httpResp.Proto,
		Headers:       flattenHeaders(httpResp.Header),
	}

	if hasEntity(method, httpResp.StatusCode) {
		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		body := string(data)
		resp.Body = &body
	}

	resp.Elapsed = time.Since(start)
	return resp, nil
}

func reasonPhrase(httpResp *nethttp.Response) string {
	if msg, ok := strings.CutPrefix(httpResp.Status, strconv.Itoa(httpResp.StatusCode)+" "); ok {
		return msg
	}
	return nethttp.StatusText(httpResp.StatusCode)
}

func flattenHeaders(h nethttp.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[nethttp.CanonicalHeaderKey(name)] = values[len(values)-1]
	}
	return out
}

func hasEntity(method string, status int) bool {
	if method == nethttp.MethodHead {
		return false
	}
	return status != nethttp.StatusNoContent && status != nethttp.StatusNotModified
}
