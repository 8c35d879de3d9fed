package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/pagegen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pagegen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
	"github.com/custodia-labs/pagegen/internal/core/services"
)

// mockSettingsService keeps settings in memory.
type mockSettingsService struct {
	settings    domain.Settings
	sets        map[string]string
	setErr      error
	validateErr error
	llmErr      error
	apiKey      string
	provider    domain.AIProvider
	model       string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultSettings(),
		sets:     make(map[string]string),
	}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.provider, m.model, m.apiKey = provider, model, apiKey
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetAPIKey(apiKey string) error {
	m.apiKey = apiKey
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (m *mockSettingsService) ValidateLLMConfig() error {
	return m.llmErr
}

// mockPipelineService returns a canned report.
type mockPipelineService struct {
	report *domain.RunReport
	err    error
	calls  int
	req    driving.RunRequest
}

func (m *mockPipelineService) Run(_ context.Context, req driving.RunRequest) (*domain.RunReport, error) {
	m.calls++
	m.req = req
	if m.report != nil {
		m.report.Input = req.Input
	}
	return m.report, m.err
}

// testPipeline is the pipeline handed out by the test factory.
type testPipeline struct {
	pipeline *mockPipelineService
	settings domain.Settings
	released bool
	buildErr error
}

func (p *testPipeline) factory(_ context.Context, settings domain.Settings) (driving.PipelineService, func(), error) {
	p.settings = settings
	if p.buildErr != nil {
		return nil, nil, p.buildErr
	}
	return p.pipeline, func() { p.released = true }, nil
}

func successReport() *domain.RunReport {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := domain.NewRunReport("7d1c2a4e-run", "product.json", start)
	r.Product = "GlowBoost Vitamin C Serum"
	for _, n := range domain.Stages() {
		r.Complete(n, "", 2*time.Millisecond)
	}
	r.Stage(domain.StageQuestionGenerator).Detail = "15 questions"
	r.Status = domain.RunSuccess
	r.FinishedAt = start.Add(1200 * time.Millisecond)
	r.Outputs = []string{"output/faq.json", "output/product_page.json", "output/comparison_page.json"}
	return r
}

func failureReport() (*domain.RunReport, *domain.StageError) {
	start := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	r := domain.NewRunReport("9f8e-run", "product.json", start)
	r.Complete(domain.StageProductParser, "", time.Millisecond)
	cause := &domain.GenerationError{Stage: "questions", Attempts: 2, Err: errors.New("401 unauthorized")}
	r.Fail(domain.StageQuestionGenerator, cause, 3*time.Millisecond)
	r.SkipPending()
	stageErr := domain.NewStageError(domain.StageQuestionGenerator, cause)
	r.Status = domain.RunFailure
	r.Failure = stageErr
	r.FinishedAt = start.Add(5 * time.Millisecond)
	return r, stageErr
}

// testServices holds the services installed by setupTestServices.
type testServices struct {
	settings *mockSettingsService
	pipeline *testPipeline
	runs     *memory.RunStore
}

// setupTestServices installs in-memory services and disables bootstrap.
// The returned function restores the previous state.
func setupTestServices() (*testServices, func()) {
	oldBootstrap := bootstrap
	oldSettings := settingsService
	oldTemplates := templateService
	oldHistory := historyService
	oldPipeline := newPipeline
	oldConfigFile := configFile

	ts := &testServices{
		settings: newMockSettingsService(),
		pipeline: &testPipeline{pipeline: &mockPipelineService{report: successReport()}},
		runs:     memory.NewRunStore(),
	}

	bootstrap = func(context.Context) error { return nil }
	settingsService = ts.settings
	historyService = services.NewHistoryService(ts.runs)
	newPipeline = ts.pipeline.factory
	configFile = "/home/test/.pagegen/config.toml"

	defs, err := file.NewTemplateSource("").Load()
	if err != nil {
		panic(err)
	}
	engine, err := services.NewTemplateEngine(defs)
	if err != nil {
		panic(err)
	}
	templateService = engine

	return ts, func() {
		bootstrap = oldBootstrap
		settingsService = oldSettings
		templateService = oldTemplates
		historyService = oldHistory
		newPipeline = oldPipeline
		configFile = oldConfigFile
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
