package conformance

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultRedirectURL is the OAuth callback served by the suite backend.
const DefaultRedirectURL = "https://0.0.0.0:8443/conformancesuite/callback"

// Configuration is the certificate and OAuth client material posted to the
// suite before test cases can be computed.
type Configuration struct {
	SigningPrivate   string `json:"signing_private"`
	SigningPublic    string `json:"signing_public"`
	TransportPrivate string `json:"transport_private"`
	TransportPublic  string `json:"transport_public"`
	ClientID         string `json:"client_id"`
	ClientSecret     string `json:"client_secret"`
	TokenEndpoint    string `json:"token_endpoint"`
	XFapiFinancialID string `json:"x_fapi_financial_id"`
	RedirectURL      string `json:"redirect_url"`
}

// DefaultConfiguration returns an empty configuration with the default
// redirect URL filled in.
func DefaultConfiguration() Configuration {
	return Configuration{RedirectURL: DefaultRedirectURL}
}

// Problem is a single discovery validation failure. A nil Key means the
// problem is not tied to a field of the model.
type Problem struct {
	Key   *string `json:"key"`
	Error string  `json:"error"`
}

// NewProblem returns a problem without a key.
func NewProblem(message string) Problem {
	return Problem{Error: message}
}

// NewKeyedProblem returns a problem attached to a model field.
func NewKeyedProblem(key string, message string) Problem {
	return Problem{Key: &key, Error: message}
}

func (p Problem) String() string {
	if p.Key == nil {
		return p.Error
	}

	return fmt.Sprintf("%s: %s", *p.Key, p.Error)
}

// DiscoveryResponse is returned by the suite when a discovery model is accepted.
// Every map is keyed by "schema_version=<url>".
type DiscoveryResponse struct {
	TokenEndpoints                 map[string]string   `json:"token_endpoints"`
	TokenEndpointAuthMethods       map[string][]string `json:"token_endpoint_auth_methods,omitempty"`
	DefaultTokenEndpointAuthMethod map[string]string   `json:"default_token_endpoint_auth_method,omitempty"`
	AuthorizationEndpoints         map[string]string   `json:"authorization_endpoints,omitempty"`
	Issuers                        map[string]string   `json:"issuers,omitempty"`
}

// FirstTokenEndpoint returns the token endpoint of the lowest sorting
// schema version key.
func (r *DiscoveryResponse) FirstTokenEndpoint() (string, bool) {
	if r == nil || len(r.TokenEndpoints) == 0 {
		return "", false
	}

	keys := make([]string, 0, len(r.TokenEndpoints))
	for key := range r.TokenEndpoints {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		endpoint := strings.TrimSpace(r.TokenEndpoints[key])
		if endpoint != "" {
			return endpoint, true
		}
	}

	return "", false
}

// DiscoveryValidation is the outcome of a discovery model validation.
type DiscoveryValidation struct {
	Success  bool
	Problems []Problem
	Response *DiscoveryResponse
}

// TestCase is a single generated conformance test.
type TestCase struct {
	ID      string        `json:"@id"`
	Name    string        `json:"name"`
	Purpose string        `json:"purpose,omitempty"`
	Input   TestCaseInput `json:"input"`
}

// TestCaseInput describes the request a test case issues.
type TestCaseInput struct {
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
}

// TestCaseResult is the outcome of running one test case.
type TestCaseResult struct {
	ID       string         `json:"id"`
	Pass     bool           `json:"pass"`
	Detail   string         `json:"detail"`
	RefURI   string         `json:"refURI"`
	Endpoint string         `json:"endpoint"`
	Fail     []ResultDetail `json:"fail,omitempty"`
}

// ResultDetail explains why a test case failed.
type ResultDetail struct {
	GeneralError    string `json:"generalError,omitempty"`
	TestCaseMessage string `json:"testCaseMessage,omitempty"`
}

// APIError is a non-success response from the suite backend.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}

	return fmt.Sprintf("conformance suite returned HTTP %d", e.Status)
}
