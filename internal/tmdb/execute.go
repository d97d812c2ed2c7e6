package tmdb

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/reelviewapp/reelview-server/internal/errors"
	"github.com/reelviewapp/reelview-server/internal/schema"
)

// Request describes one upstream call before execution.
type Request struct {
	Method   string
	Endpoint string // path under the base URL, e.g. "/movie/popular"
	// Params are URL-encoded query parameters. Nil values (untyped nil or
	// nil pointers) are omitted; everything else is stringified.
	Params map[string]any
	// Headers are merged over the defaults; caller values win on conflict.
	Headers map[string]string
	// Body is JSON-serialized unless it is []byte, which passes through
	// unmodified and drops the default content type so the transport can
	// set its own.
	Body any
}

// Do executes a request and returns the schema-validated typed value.
//
// Every failure is normalized into the error taxonomy: no response at all is
// a transport error, a non-2xx status is a remote error carrying a message
// derived from the upstream error body, and a payload that decodes but does
// not match the schema is a validation error naming the violating paths. The
// raw untyped payload never reaches the caller.
func Do[T any](ctx context.Context, c *Client, req Request, s *schema.Schema) (T, error) {
	var zero T

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return zero, errors.Transport(fmt.Errorf("rate limit: %w", err))
	}

	reqURL := c.baseURL + req.Endpoint
	if query := encodeParams(req.Params); query != "" {
		reqURL += "?" + query
	}

	body, isBinary, err := encodeBody(req.Body)
	if err != nil {
		return zero, errors.Wrap(err, errors.CodeInternal, "encode request body")
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return zero, errors.Transport(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil && !isBinary {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("tmdb request", "method", method, "endpoint", req.Endpoint)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return zero, errors.Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, errors.Transport(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, errors.Remote(resp.StatusCode, remoteMessage(resp.StatusCode, raw))
	}

	if resp.StatusCode == http.StatusNoContent {
		// Validate the empty value against the schema; callers expecting
		// structured data still get a validation failure, which is correct.
		if violations := s.Validate(nil); violations != nil {
			return zero, validationError(s, violations)
		}
		return zero, nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return zero, errors.Transport(fmt.Errorf("malformed response: %w", err))
	}

	if violations := s.Validate(payload); violations != nil {
		return zero, validationError(s, violations)
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, errors.Wrapf(err, errors.CodeInternal, "decode %s", s.Name())
	}
	return value, nil
}

// encodeParams builds the query string, omitting nil-valued parameters.
func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		s, ok := stringifyParam(v)
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return values.Encode()
}

func stringifyParam(v any) (string, bool) {
	switch p := v.(type) {
	case nil:
		return "", false
	case *string:
		if p == nil {
			return "", false
		}
		return *p, true
	case *int:
		if p == nil {
			return "", false
		}
		return fmt.Sprintf("%d", *p), true
	case string:
		return p, true
	case bool:
		if p {
			return "true", true
		}
		return "false", true
	default:
		return fmt.Sprintf("%v", p), true
	}
}

func encodeBody(body any) (io.Reader, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return bytes.NewReader(b), true, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, err
		}
		return bytes.NewReader(data), false, nil
	}
}

// remoteMessage extracts a human-readable message from an upstream error
// body, falling back to the status line when the body is not parseable JSON.
func remoteMessage(status int, raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"status_message", "message", "error"} {
			if msg, ok := body[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}

func validationError(s *schema.Schema, violations []schema.Violation) *errors.Error {
	paths := make([]string, 0, len(violations))
	for _, v := range violations {
		paths = append(paths, v.String())
	}
	return errors.ValidationWithPaths(
		fmt.Sprintf("%s response failed validation", s.Name()),
		paths,
	)
}
