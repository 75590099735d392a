package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultAPIVersion   = "2024-11-30"
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = time.Second
)

// ServiceError is any failure reported by the document-understanding
// service: transport problems, auth/quota rejections, invalid models, or an
// analysis that finished in the failed state.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("document service: %v", e.Err)
	case e.Code != "":
		return fmt.Sprintf("document service: %s: %s", e.Code, e.Message)
	default:
		return fmt.Sprintf("document service: %s", e.Message)
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client communicates with an Azure Document Intelligence endpoint over its
// REST API: a submit request that returns an operation URL, then polling
// until the analysis completes.
type Client struct {
	endpoint     string
	apiKey       string
	apiVersion   string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithAPIVersion overrides the api-version query parameter.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithPollInterval overrides the delay between result polls (used by tests).
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the given endpoint and subscription key.
func New(endpoint, apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiKey:       apiKey,
		apiVersion:   defaultAPIVersion,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		pollInterval: defaultPollInterval,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError mirrors the service's JSON error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// operationResult is the polled operation state. AnalyzeResult is present
// only once Status is "succeeded".
type operationResult struct {
	Status        string         `json:"status"`
	Error         *apiError      `json:"error,omitempty"`
	AnalyzeResult *AnalyzeResult `json:"analyzeResult,omitempty"`
}

// Analyze submits document bytes to the given prebuilt model and blocks
// until the service finishes, returning the analyze result. Every failure is
// reported as a *ServiceError; there are no retries.
func (c *Client) Analyze(ctx context.Context, modelID, contentType string, body []byte) (*AnalyzeResult, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("docintel.analyze.start",
		"req_id", rid, "model_id", modelID, "content_type", contentType, "bytes", len(body))

	opURL, err := c.submit(ctx, modelID, contentType, body)
	if err != nil {
		c.logger.Error("docintel.analyze.submit_failed", "req_id", rid, "error", err)
		return nil, err
	}

	result, err := c.poll(ctx, opURL)
	if err != nil {
		c.logger.Error("docintel.analyze.poll_failed", "req_id", rid, "error", err)
		return nil, err
	}

	c.logger.Info("docintel.analyze.ok",
		"req_id", rid,
		"documents", len(result.Documents),
		"key_value_pairs", len(result.KeyValuePairs),
		"tables", len(result.Tables),
		"content_len", len(result.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (c *Client) submit(ctx context.Context, modelID, contentType string, body []byte) (string, error) {
	url := fmt.Sprintf("%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		c.endpoint, modelID, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &ServiceError{Message: "creating analyze request", Err: err}
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &ServiceError{Message: "submitting document", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", serviceErrorFromResponse(resp)
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: "missing Operation-Location header"}
	}
	return opURL, nil
}

func (c *Client) poll(ctx context.Context, opURL string) (*AnalyzeResult, error) {
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opURL, nil)
		if err != nil {
			return nil, &ServiceError{Message: "creating poll request", Err: err}
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &ServiceError{Message: "polling analyze operation", Err: err}
		}

		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return nil, serviceErrorFromResponse(resp)
		}

		var op operationResult
		err = json.NewDecoder(resp.Body).Decode(&op)
		resp.Body.Close()
		if err != nil {
			return nil, &ServiceError{Message: "decoding operation result", Err: err}
		}

		switch op.Status {
		case "succeeded":
			if op.AnalyzeResult == nil {
				return &AnalyzeResult{}, nil
			}
			return op.AnalyzeResult, nil
		case "failed":
			se := &ServiceError{Message: "analysis failed"}
			if op.Error != nil {
				se.Code = op.Error.Error.Code
				se.Message = op.Error.Error.Message
			}
			return nil, se
		}

		select {
		case <-ctx.Done():
			return nil, &ServiceError{Message: "analysis cancelled", Err: ctx.Err()}
		case <-time.After(c.pollInterval):
		}
	}
}

func serviceErrorFromResponse(resp *http.Response) *ServiceError {
	se := &ServiceError{StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Code != "" {
		se.Code = ae.Error.Code
		se.Message = ae.Error.Message
		return se
	}
	se.Message = fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	return se
}
