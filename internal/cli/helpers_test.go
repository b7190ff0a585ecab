package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/andreagrandi/conformance-wizard/internal/conformance"
	"github.com/andreagrandi/conformance-wizard/internal/wizard"
)

const testTokenEndpoint = "https://ob19-auth1.o3bank.co.uk:4201/token"

type fakeSuite struct {
	mu sync.Mutex

	discoveryProblems []conformance.Problem
	configError       string
	testCases         []conformance.TestCase
	results           map[string]conformance.TestCaseResult

	configurations []conformance.Configuration
}

func newFakeSuite(t *testing.T) (*fakeSuite, *httptest.Server) {
	t.Helper()

	suite := &fakeSuite{
		testCases: []conformance.TestCase{
			{
				ID:    "#t1000",
				Name:  "Create Account Access Consents",
				Input: conformance.TestCaseInput{Method: "POST", Endpoint: "/account-access-consents"},
			},
		},
		results: map[string]conformance.TestCaseResult{
			"#t1000": {ID: "#t1000", Pass: true, Endpoint: "/account-access-consents"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/discovery-model", func(w http.ResponseWriter, _ *http.Request) {
		suite.mu.Lock()
		defer suite.mu.Unlock()

		if len(suite.discoveryProblems) > 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": suite.discoveryProblems})
			return
		}

		writeJSON(w, http.StatusCreated, conformance.DiscoveryResponse{
			TokenEndpoints: map[string]string{"schema_version=": testTokenEndpoint},
		})
	})
	mux.HandleFunc("POST /api/config/global", func(w http.ResponseWriter, r *http.Request) {
		var cfg conformance.Configuration
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		suite.mu.Lock()
		defer suite.mu.Unlock()

		suite.configurations = append(suite.configurations, cfg)
		if suite.configError != "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": suite.configError})
			return
		}

		writeJSON(w, http.StatusCreated, cfg)
	})
	mux.HandleFunc("GET /api/test-cases", func(w http.ResponseWriter, _ *http.Request) {
		suite.mu.Lock()
		defer suite.mu.Unlock()

		writeJSON(w, http.StatusOK, suite.testCases)
	})
	mux.HandleFunc("POST /api/run", func(w http.ResponseWriter, _ *http.Request) {
		suite.mu.Lock()
		defer suite.mu.Unlock()

		writeJSON(w, http.StatusOK, suite.results)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return suite, server
}

func (s *fakeSuite) lastConfiguration() (conformance.Configuration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.configurations) == 0 {
		return conformance.Configuration{}, false
	}

	return s.configurations[len(s.configurations)-1], true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// isolateEnvironment points HOME at a temp dir, clears CONFORMANCE_*
// overrides and disables colours. It returns the config file path to pass
// with --config.
func isolateEnvironment(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("NO_COLOR", "1")

	for _, name := range []string{"CONFORMANCE_SERVER_URL", "CONFORMANCE_LOG_LEVEL"} {
		t.Setenv(name, "")
	}

	for _, field := range credentialFields() {
		t.Setenv("CONFORMANCE_"+strings.ToUpper(field.Key()), "")
	}

	return filepath.Join(home, "config.json")
}

func writeCertificates(t *testing.T) map[wizard.Field]string {
	t.Helper()

	dir := t.TempDir()
	paths := make(map[wizard.Field]string, len(wizard.CertificateFields))

	for _, field := range wizard.CertificateFields {
		path := filepath.Join(dir, field.Key()+field.Extension())
		content := "-----BEGIN " + strings.ToUpper(field.Key()) + "-----\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write certificate %q: %v", path, err)
		}

		paths[field] = path
	}

	return paths
}

func executeRootCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	return executeRootCommandWithInput(t, "", args...)
}

func executeRootCommandWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	resetCommandState()

	var stdout, stderr bytes.Buffer

	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs([]string{})
		rootCmd.SetIn(nil)
		resetCommandState()
	})

	err := rootCmd.Execute()
	output := stdout.String() + stderr.String()

	return output, err
}

// resetCommandState clears flag values left behind by a previous Execute on
// the shared root command.
func resetCommandState() {
	rootOptions.configPath = ""
	rootOptions.serverURL = ""
	rootOptions.logLevel = ""
	rootOptions.insecure = false
	rootOptions.timeout = 0

	validateOpts.reset()

	for _, name := range []string{"version", "help"} {
		if flag := rootCmd.Flags().Lookup(name); flag != nil {
			_ = flag.Value.Set("false")
			flag.Changed = false
		}
	}
}
