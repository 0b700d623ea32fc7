// Package solver implements the HTTP client for the external optimization
// service. The service is an opaque collaborator: one POST, one JSON reply.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/retailerkit/planner/pkg/application/dto"
	"github.com/retailerkit/planner/pkg/domain/entities"
)

// DefaultTimeout bounds a solve exchange. The solver specifies no timeout of
// its own, so the client imposes one.
const DefaultTimeout = 60 * time.Second

// Client talks to the external solver over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a solver client for the given base URL
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Solve POSTs the request to the solver and decodes the candidate solutions.
// Network failures and non-2xx statuses are reported as RemoteCallError.
func (c *Client) Solve(ctx context.Context, req *dto.SolveRequest) (*dto.SolveResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solve request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/solve", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build solve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &entities.RemoteCallError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &entities.RemoteCallError{Status: resp.StatusCode}
	}

	var solveResp dto.SolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&solveResp); err != nil {
		return nil, &entities.RemoteCallError{Err: fmt.Errorf("failed to decode solver response: %w", err)}
	}

	c.logger.Debug("solve completed",
		"solutions", len(solveResp.Solutions),
		"elapsed", time.Since(start))

	return &solveResp, nil
}
