package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/onerm/internal/calc"
)

// HTTPClient implements DataSource by calling the onerm REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the calculator is served elsewhere (for example over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) (int, []byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("httpclient: read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Estimate calls /api/v1/estimate. Validation failures come back as the
// matching calc.ErrorKind.
func (c *HTTPClient) Estimate(ctx context.Context, in calc.Input) (calc.Result, error) {
	params := url.Values{}
	params.Set("exercise", string(in.Exercise))
	params.Set("weight", in.Weight)
	params.Set("reps", in.Reps)

	status, body, err := c.get(ctx, "/api/v1/estimate", params)
	if err != nil {
		return calc.Result{}, err
	}

	var resp struct {
		Result    *calc.Result `json:"result"`
		ErrorKind string       `json:"error_kind"`
	}
	switch status {
	case http.StatusOK, http.StatusUnprocessableEntity:
	default:
		return calc.Result{}, fmt.Errorf("httpclient: /api/v1/estimate returned %d: %s", status, body)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return calc.Result{}, fmt.Errorf("httpclient: decode estimate: %w", err)
	}
	if resp.Result != nil {
		return *resp.Result, nil
	}
	for _, k := range []calc.ErrorKind{calc.MissingExercise, calc.InvalidWeight, calc.InvalidReps} {
		if k.String() == resp.ErrorKind {
			return calc.Result{}, k
		}
	}
	return calc.Result{}, fmt.Errorf("httpclient: unexpected estimate response: %s", body)
}
