package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/logic"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// Ensure PipelineService implements the interface.
var _ driving.PipelineService = (*PipelineService)(nil)

// historySaveTimeout bounds the best-effort history write after a run.
const historySaveTimeout = 5 * time.Second

// pageAgent renders one output page.
type pageAgent interface {
	Generate(ctx context.Context, in PageInput) (*domain.Document, error)
}

// PipelineService runs the product pipeline end to end.
//
// Stages run strictly in order; a failure aborts the remaining stages and no
// output is written. Only the page agents may run concurrently.
type PipelineService struct {
	settings  domain.Settings
	generator string
	parser    *ProductParser
	gen       *Generator
	questions *QuestionGenerator
	templates driven.TemplateSource
	writer    driven.DocumentWriter
	runs      driven.RunStore

	now      func() time.Time
	newRunID func() string
}

// NewPipelineService creates the orchestrator.
// llm may be nil, in which case every generation stage fails with
// domain.ErrLLMUnavailable. runs is optional; without it no history is kept.
func NewPipelineService(
	settings domain.Settings,
	generator string,
	llm driven.LLMService,
	prompts driven.PromptStore,
	templates driven.TemplateSource,
	writer driven.DocumentWriter,
	runs driven.RunStore,
) *PipelineService {
	gen := NewGenerator(llm, prompts, GenerationConfig{
		Timeout:    settings.LLM.Timeout,
		MaxTokens:  settings.LLM.MaxTokens,
		StrictJSON: settings.Pipeline.StrictJSON,
	})
	return &PipelineService{
		settings:  settings,
		generator: generator,
		parser:    NewProductParser(),
		gen:       gen,
		questions: NewQuestionGenerator(gen, settings.Pipeline.MinQuestions, settings.LLM.Temperature),
		templates: templates,
		writer:    writer,
		runs:      runs,
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

// SetPromptStore sets the prompt store used by every generation stage.
func (s *PipelineService) SetPromptStore(store driven.PromptStore) {
	s.gen.SetPromptStore(store)
}

// Run executes every stage and writes the three output documents.
func (s *PipelineService) Run(ctx context.Context, req driving.RunRequest) (*domain.RunReport, error) {
	if s.settings.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Pipeline.Timeout)
		defer cancel()
	}

	report := domain.NewRunReport(s.newRunID(), req.Input, s.now())
	logger.Debug("Starting run %s for %s", report.RunID, req.Input)

	err := s.execute(ctx, req, report)

	report.FinishedAt = s.now()
	if err != nil {
		var stageErr *domain.StageError
		if !errors.As(err, &stageErr) {
			stageErr = domain.NewStageError(0, err)
		}
		report.Status = domain.RunFailure
		report.Failure = stageErr
		report.SkipPending()
		err = stageErr
		logger.Warn("Run %s failed: %v", report.RunID, stageErr)
	} else {
		report.Status = domain.RunSuccess
		logger.Debug("Run %s completed in %v", report.RunID, report.Duration())
	}

	s.saveHistory(ctx, report)
	return report, err
}

//nolint:gocyclo // Orchestration function with necessary sequential stages
func (s *PipelineService) execute(ctx context.Context, req driving.RunRequest, report *domain.RunReport) error {
	var product domain.Product
	if err := s.stage(ctx, report, domain.StageProductParser, func() (string, error) {
		p, err := s.parser.Parse(req.Product)
		if err != nil {
			return "", err
		}
		product = p
		report.Product = p.Name
		return fmt.Sprintf("parsed %q (%s)", p.Name, p.ID), nil
	}); err != nil {
		return err
	}

	var questions domain.QuestionSet
	if err := s.stage(ctx, report, domain.StageQuestionGenerator, func() (string, error) {
		qs, err := s.questions.Generate(ctx, product)
		if err != nil {
			return "", err
		}
		questions = qs
		return fmt.Sprintf("%d questions across %d categories", len(qs), len(qs.CategoryCounts())), nil
	}); err != nil {
		return err
	}

	var blocks domain.Blocks
	if err := s.stage(ctx, report, domain.StageContentLogic, func() (string, error) {
		blocks = ContentBlocks(product)
		return "benefits, usage, safety and ingredients blocks", nil
	}); err != nil {
		return err
	}

	var engine *TemplateEngine
	if err := s.stage(ctx, report, domain.StageTemplateEngine, func() (string, error) {
		e, err := s.loadTemplates()
		if err != nil {
			return "", err
		}
		engine = e
		return fmt.Sprintf("%d templates loaded", len(e.Names())), nil
	}); err != nil {
		return err
	}

	docs, err := s.runAgents(ctx, report, engine, PageInput{
		Product:   product,
		Questions: questions,
		Blocks:    blocks,
		System:    domain.NewSystemInfo(s.now(), s.generator, s.gen.ModelName(), report.RunID),
	})
	if err != nil {
		return err
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.settings.Pipeline.OutputDir
	}
	return s.stage(ctx, report, domain.StageWrite, func() (string, error) {
		paths, err := s.writer.WriteAll(ctx, outputDir, docs)
		if err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrOutput, err)
		}
		report.Outputs = paths
		return fmt.Sprintf("%d files written to %s", len(paths), outputDir), nil
	})
}

// stage runs fn as stage n and records the outcome in the report.
func (s *PipelineService) stage(ctx context.Context, report *domain.RunReport, n int, fn func() (string, error)) error {
	logger.Debug("[%d/%d] %s", n, domain.StageWrite, domain.StageName(n))
	start := time.Now()

	if err := ctx.Err(); err != nil {
		report.Fail(n, err, 0)
		return domain.NewStageError(n, err)
	}

	detail, err := fn()
	if err != nil {
		report.Fail(n, err, time.Since(start))
		return domain.NewStageError(n, err)
	}
	report.Complete(n, detail, time.Since(start))
	return nil
}

// runAgents runs the three page agents. Concurrently, every agent runs to
// completion so each failure is recorded; sequentially, the first failure
// stops the rest. The lowest failing stage becomes the run error.
func (s *PipelineService) runAgents(
	ctx context.Context,
	report *domain.RunReport,
	engine *TemplateEngine,
	in PageInput,
) ([]driven.OutputDocument, error) {
	agentCfg := AgentConfig{
		Temperature: s.settings.LLM.Temperature,
		Enhance:     s.settings.LLM.EnhancePages,
		FAQCount:    s.settings.Pipeline.FAQCount,
	}
	comparisonCfg := agentCfg
	comparisonCfg.Temperature = s.settings.LLM.ComparisonTemperature

	jobs := []struct {
		stage int
		page  domain.PageType
		agent pageAgent
	}{
		{domain.StageFAQAgent, domain.PageFAQ, NewFAQAgent(s.gen, engine, agentCfg)},
		{domain.StageProductAgent, domain.PageProduct, NewProductAgent(s.gen, engine, agentCfg)},
		{domain.StageComparisonAgent, domain.PageComparison, NewComparisonAgent(s.gen, engine, s.parser, comparisonCfg)},
	}

	docs := make([]*domain.Document, len(jobs))
	errs := make([]error, len(jobs))
	took := make([]time.Duration, len(jobs))

	run := func(i int) {
		start := time.Now()
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		docs[i], errs[i] = jobs[i].agent.Generate(ctx, in)
		took[i] = time.Since(start)
	}

	if s.settings.Pipeline.ConcurrentPages {
		// Errors go to errs by slot, not through the group: returning one
		// would not stop siblings anyway, and every outcome is reported.
		var g errgroup.Group
		for i := range jobs {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range jobs {
			run(i)
			if errs[i] != nil {
				break
			}
		}
	}

	var first error
	out := make([]driven.OutputDocument, 0, len(jobs))
	for i, job := range jobs {
		logger.Debug("[%d/%d] %s", job.stage, domain.StageWrite, domain.StageName(job.stage))
		switch {
		case errs[i] != nil:
			report.Fail(job.stage, errs[i], took[i])
			if first == nil {
				first = domain.NewStageError(job.stage, errs[i])
			}
		case docs[i] != nil:
			report.Complete(job.stage, fmt.Sprintf("rendered %s with %d fields", job.page, docs[i].Len()), took[i])
			out = append(out, driven.OutputDocument{Name: job.page.FileName(), Document: docs[i]})
		}
	}
	if first != nil {
		return nil, first
	}
	return out, nil
}

// loadTemplates builds an engine and checks every page has a template.
func (s *PipelineService) loadTemplates() (*TemplateEngine, error) {
	defs, err := s.templates.Load()
	if err != nil {
		if errors.Is(err, domain.ErrTemplate) {
			return nil, err
		}
		return nil, &domain.TemplateError{Template: "*", Reason: err.Error()}
	}
	engine, err := NewTemplateEngine(defs)
	if err != nil {
		return nil, err
	}
	for _, page := range domain.PageTypes() {
		if !engine.Has(page.String()) {
			return nil, &domain.TemplateError{Template: page.String(), Reason: "no template defined for page"}
		}
	}
	return engine, nil
}

// saveHistory stores the report. Failures are logged, never returned.
func (s *PipelineService) saveHistory(ctx context.Context, report *domain.RunReport) {
	if s.runs == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historySaveTimeout)
	defer cancel()
	if err := s.runs.Save(saveCtx, report); err != nil {
		logger.Warn("Could not save run history: %v", err)
	}
}

// ContentBlocks runs the four product transforms.
func ContentBlocks(p domain.Product) domain.Blocks {
	benefits := logic.GenerateBenefits(p)
	usage := logic.GenerateUsage(p)
	safety := logic.GenerateSafety(p)
	ingredients := logic.GenerateIngredients(p)
	return domain.Blocks{
		Benefits:    &benefits,
		Usage:       &usage,
		Safety:      &safety,
		Ingredients: &ingredients,
	}
}
