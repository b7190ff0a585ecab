package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andreagrandi/conformance-wizard/internal/app"
	"github.com/andreagrandi/conformance-wizard/internal/config"
	"github.com/andreagrandi/conformance-wizard/internal/conformance"
	"github.com/andreagrandi/conformance-wizard/internal/credential"
	"github.com/andreagrandi/conformance-wizard/internal/logging"
	"github.com/andreagrandi/conformance-wizard/internal/metrics"
	"github.com/andreagrandi/conformance-wizard/internal/render"
	"github.com/andreagrandi/conformance-wizard/internal/status"
	"github.com/andreagrandi/conformance-wizard/internal/template"
	"github.com/andreagrandi/conformance-wizard/internal/wizard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	loadConfig = func() (*config.Config, error) {
		return config.LoadFrom(rootOptions.configPath)
	}
	loadTemplates     = template.LoadTemplates
	newCredentialFile = func() *credential.FileSource {
		return credential.NewFileSource("")
	}
	newSuiteClient = func(baseURL string, opts ...conformance.Option) suiteClient {
		return conformance.NewClientWithBaseURL(baseURL, opts...)
	}
)

type suiteClient interface {
	wizard.DiscoveryValidator
	wizard.ConformanceAPI
}

// session bundles one wizard store with everything the commands print
// through.
type session struct {
	store    *wizard.Store
	banner   *status.Banner
	theme    render.Theme
	settings config.Settings
	logger   *logrus.Logger
	baseURL  string

	closers []func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	applyFlagOverrides(&settings)

	logger, err := logging.New(logging.Options{
		Level:  settings.LogLevel,
		Format: settings.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	baseURL := settings.ServerURL
	if baseURL == "" {
		baseURL = app.DefaultServerURL
	}

	client := newSuiteClient(baseURL,
		conformance.WithTimeout(settings.RequestTimeout),
		conformance.WithInsecureTLS(settings.InsecureSkipVerify),
		conformance.WithLogger(logging.Component(logger, "conformance")),
	)

	theme := render.PlainTheme()
	if cfg.IsFeatureEnabled("styled") && surveyColorsEnabled() {
		theme = render.NewTheme()
	}

	s := &session{
		banner:   status.NewBanner(logging.Component(logger, "status")),
		theme:    theme,
		settings: settings,
		logger:   logger,
		baseURL:  baseURL,
	}

	storeOptions := []wizard.Option{
		wizard.WithStatusNotifier(s.banner),
		wizard.WithLogger(logging.Component(logger, "wizard")),
		wizard.WithRedirectURL(settings.RedirectURL),
	}

	if cfg.IsFeatureEnabled("metrics") && settings.MetricsAddr != "" {
		recorder := metrics.New()
		storeOptions = append(storeOptions, wizard.WithObserver(recorder))
		s.closers = append(s.closers, serveMetrics(settings.MetricsAddr, recorder.Handler(), logging.Component(logger, "metrics")))
	}

	s.store = wizard.NewStore(client, client, storeOptions...)
	s.closers = append(s.closers, s.store.Close)

	output := cmd.OutOrStdout()
	cancel := s.banner.Subscribe(func(errs []error) {
		if len(errs) > 0 {
			fmt.Fprintln(output, render.RenderBanner(s.theme, errs))
		}
	})
	s.closers = append(s.closers, cancel)

	return s, nil
}

func (s *session) Close() {
	for index := len(s.closers) - 1; index >= 0; index-- {
		s.closers[index]()
	}
	s.closers = nil
}

func (s *session) printBreadcrumb(output io.Writer, step wizard.Step) {
	fmt.Fprintln(output, render.RenderBreadcrumb(s.theme, render.StepBreadcrumb(step)))
}

// prefillCredentials copies OAuth client values found in the environment or
// the credential file into the store.
func (s *session) prefillCredentials(output io.Writer, file *credential.FileSource) error {
	resolver := credential.NewResolver(credential.NewEnvSource(), file)

	resolutions, err := resolver.Prefill(s.store, credentialFields()...)
	if err != nil {
		return err
	}

	for _, resolution := range resolutions {
		fmt.Fprintf(output, "Using %s from %s.\n", resolution.Field.Label(), resolution.Source)
	}

	return nil
}

func credentialFields() []wizard.Field {
	return append(append([]wizard.Field{}, wizard.ClientFields...), wizard.FieldRedirectURL)
}

func applyFlagOverrides(settings *config.Settings) {
	if value := strings.TrimSpace(rootOptions.serverURL); value != "" {
		settings.ServerURL = value
	}

	if value := strings.TrimSpace(rootOptions.logLevel); value != "" {
		settings.LogLevel = value
	}

	if rootOptions.insecure {
		settings.InsecureSkipVerify = true
	}

	if rootOptions.timeout > 0 {
		settings.RequestTimeout = rootOptions.timeout
	}
}

func serveMetrics(addr string, handler http.Handler, logger *logrus.Entry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server stopped")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = server.Shutdown(ctx)
	}
}
