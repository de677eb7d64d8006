package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PathAPIs         = "/apis"
	PathCreate       = "/apis/create"
	PathHistory      = "/apis/history"
	PathCheckContext = "/apis/check-context"

	// CorrelationIDHeader is sent on every request so backend logs can be matched.
	CorrelationIDHeader = "X-Correlation-ID"

	defaultTimeout = 30 * time.Second

	// maxMessageRunes caps error text taken from a non-JSON body.
	maxMessageRunes = 200
)

// Client issues the portal's HTTP calls against one backend base URL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

type response struct {
	status        int
	body          []byte
	correlationID string
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// message extracts {"message": ...} from the body, or the raw text when the
// body is not JSON (HTML error pages etc).
func (r response) message() string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.body, &m); err == nil {
		return firstNonEmpty(m.Message, m.Error)
	}
	s := strings.TrimSpace(string(r.body))
	if utf8.RuneCountInString(s) > maxMessageRunes {
		s = string([]rune(s)[:maxMessageRunes])
	}
	return s
}

func (c Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c Client) endpointFor(path string) (string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", fmt.Errorf("missing api base url")
	}
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	p := strings.TrimPrefix(strings.TrimSpace(path), "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + p
	return u.String(), nil
}

// do sends one request. Only failures to reach the backend or read its reply
// are returned as errors; status handling is left to the operation.
func (c Client) do(ctx context.Context, op, method, path string, body any) (response, error) {
	endpoint, err := c.endpointFor(path)
	if err != nil {
		return response{}, err
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return response{}, err
		}
		r = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return response{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	correlationID := uuid.New().String()
	req.Header.Set(CorrelationIDHeader, correlationID)

	log := c.logger().With(
		zap.String("op", op),
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("correlation_id", correlationID),
	)
	started := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return response{}, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Debug("reading response failed", zap.Int("status", resp.StatusCode), zap.Error(err))
		return response{}, &TransportError{Op: op, Err: err}
	}
	log.Debug("request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)
	return response{status: resp.StatusCode, body: b, correlationID: correlationID}, nil
}

func decode[T any](op string, resp response) (T, error) {
	var out T
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return out, &DecodeError{Op: op, Status: resp.status, Err: err}
	}
	return out, nil
}

func apiPath(id ID) string {
	return PathAPIs + "/" + url.PathEscape(strings.TrimSpace(id.String()))
}

func updatePath(id ID) string {
	return apiPath(id) + "/update"
}
