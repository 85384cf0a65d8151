package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johanforsgren/repodeck/internal/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxLoggedBody   = 10000
)

// LoggingTransport wraps an http.RoundTripper and logs every exchange with
// credentials redacted.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{
		Transport: transport,
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logRequest(req)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		logger.LogError("HTTP_REQUEST", fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
		return nil, err
	}

	t.logResponse(req, resp, duration)
	return resp, nil
}

func (t *LoggingTransport) logRequest(req *http.Request) {
	var buf strings.Builder

	fmt.Fprintf(&buf, "-> %s %s", req.Method, req.URL.String())
	if id := req.Header.Get(RequestIDHeader); id != "" {
		fmt.Fprintf(&buf, " [%s]", id)
	}
	buf.WriteString("\n")

	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			fmt.Fprintf(&buf, "  %s: [REDACTED]\n", name)
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&buf, "  %s: %s\n", name, value)
		}
	}

	if req.Body != nil && req.ContentLength > 0 && req.ContentLength < maxLoggedBody {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			fmt.Fprintf(&buf, "  body: %s\n", RedactBody(bodyBytes))
		}
	} else if req.ContentLength > 0 {
		fmt.Fprintf(&buf, "  body: (%d bytes, too large to log)\n", req.ContentLength)
	}

	logger.LogHTTP("%s", strings.TrimRight(buf.String(), "\n"))
}

func (t *LoggingTransport) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	var buf strings.Builder

	fmt.Fprintf(&buf, "<- %s %s - %s (%v)", req.Method, req.URL.Path, resp.Status, duration)
	if id := req.Header.Get(RequestIDHeader); id != "" {
		fmt.Fprintf(&buf, " [%s]", id)
	}

	if resp.Body != nil && resp.ContentLength != 0 {
		bodyBytes, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			switch {
			case len(bodyBytes) > 0 && len(bodyBytes) < maxLoggedBody:
				fmt.Fprintf(&buf, "\n  body: %s", RedactBody(bodyBytes))
			case len(bodyBytes) > 0:
				fmt.Fprintf(&buf, "\n  body: (%d bytes, too large to log)", len(bodyBytes))
			}
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(nil))
		}
	}

	logger.LogHTTP("%s", buf.String())
}

var sensitiveFields = map[string]bool{
	"accesstoken":  true,
	"refreshtoken": true,
	"password":     true,
	"mfacode":      true,
}

// RedactBody masks credential fields of a JSON object body. Non-JSON bodies are returned as-is.
func RedactBody(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return string(body)
	}

	redacted := false
	for key := range fields {
		if sensitiveFields[strings.ToLower(key)] {
			fields[key] = json.RawMessage(`"[REDACTED]"`)
			redacted = true
		}
	}
	if !redacted {
		return string(body)
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return "[REDACTED]"
	}
	return string(out)
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}
