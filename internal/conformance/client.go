package conformance

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andreagrandi/conformance-wizard/internal/app"
	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/sirupsen/logrus"
)

const (
	discoveryModelPath = "/api/discovery-model"
	configurationPath  = "/api/config/global"
	testCasesPath      = "/api/test-cases"
	runPath            = "/api/run"

	DefaultTimeout = 30 * time.Second
)

// Client talks to the conformance suite backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *logrus.Entry
}

// Option customises a Client.
type Option func(*Client)

// WithTimeout bounds every request made by the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithInsecureTLS disables certificate verification. The suite ships with a
// self-signed certificate, so local runs usually need this.
func WithInsecureTLS(insecure bool) Option {
	return func(c *Client) {
		if !insecure {
			return
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		c.httpClient.Transport = transport
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the default local suite address.
func NewClient(opts ...Option) *Client {
	return NewClientWithBaseURL(app.DefaultServerURL, opts...)
}

// NewClientWithBaseURL creates a client with a custom base URL.
func NewClientWithBaseURL(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		userAgent: app.UserAgent(),
		logger:    logging.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ValidateDiscoveryConfig posts the discovery model to the suite.
//
// A 400 response carrying a list of problems is a validation failure, not an
// error: it is returned with Success false. Any other non-success response or
// transport failure is returned as an error.
func (c *Client) ValidateDiscoveryConfig(ctx context.Context, model any) (*DiscoveryValidation, error) {
	// A nil model is still sent, as the JSON literal null.
	payload, err := encodeBody(model)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, http.MethodPost, discoveryModelPath, payload)
	if err != nil {
		return nil, err
	}

	switch {
	case status >= 200 && status < 300:
		var response DiscoveryResponse
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &response); err != nil {
				return nil, fmt.Errorf("parse discovery response: %w", err)
			}
		}

		return &DiscoveryValidation{Success: true, Problems: []Problem{}, Response: &response}, nil
	case status == http.StatusBadRequest:
		var failures struct {
			Error []Problem `json:"error"`
		}
		if err := json.Unmarshal(body, &failures); err == nil && len(failures.Error) > 0 {
			return &DiscoveryValidation{Success: false, Problems: failures.Error}, nil
		}

		return nil, parseAPIError(status, body)
	default:
		return nil, parseAPIError(status, body)
	}
}

// ValidateConfiguration posts the configuration to the suite. The response
// body carries nothing the wizard needs; only success matters.
func (c *Client) ValidateConfiguration(ctx context.Context, cfg Configuration) error {
	return c.doJSON(ctx, http.MethodPost, configurationPath, cfg, nil)
}

// ComputeTestCases asks the suite to generate test cases for the validated
// discovery model and configuration.
func (c *Client) ComputeTestCases(ctx context.Context) ([]TestCase, error) {
	var testCases []TestCase
	if err := c.doJSON(ctx, http.MethodGet, testCasesPath, nil, &testCases); err != nil {
		return nil, err
	}

	if testCases == nil {
		testCases = []TestCase{}
	}

	return testCases, nil
}

// ComputeTestCaseResults runs the generated test cases and returns their
// results keyed by test case ID.
func (c *Client) ComputeTestCaseResults(ctx context.Context) (map[string]TestCaseResult, error) {
	var results map[string]TestCaseResult
	if err := c.doJSON(ctx, http.MethodPost, runPath, nil, &results); err != nil {
		return nil, err
	}

	if results == nil {
		results = map[string]TestCaseResult{}
	}

	return results, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, payload any, target any) error {
	var reqBody []byte
	if payload != nil {
		encoded, err := encodeBody(payload)
		if err != nil {
			return err
		}
		reqBody = encoded
	}

	status, body, err := c.do(ctx, method, path, reqBody)
	if err != nil {
		return err
	}

	if status < 200 || status >= 300 {
		return parseAPIError(status, body)
	}

	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

func encodeBody(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	return data, nil
}

// do sends payload as the JSON request body; a nil payload sends none.
func (c *Client) do(ctx context.Context, method string, path string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Debug("request failed")

		return 0, nil, fmt.Errorf("conformance suite request failed: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(started).String(),
	}).Debug("request completed")

	return resp.StatusCode, body, nil
}

func parseAPIError(statusCode int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err != nil || strings.TrimSpace(apiErr.Message) == "" {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}

		return &APIError{Status: statusCode, Message: snippet}
	}

	apiErr.Status = statusCode
	return &apiErr
}
