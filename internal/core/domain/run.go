package domain

import (
	"path/filepath"
	"time"
)

// RunStatus is the overall outcome of a pipeline run.
type RunStatus string

// Run outcomes.
const (
	RunSuccess RunStatus = "success"
	RunFailure RunStatus = "failure"
)

// StageStatus is the outcome of one stage.
type StageStatus string

// Stage outcomes.
const (
	StagePending   StageStatus = "pending"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// Pipeline stage numbers.
const (
	StageProductParser     = 1
	StageQuestionGenerator = 2
	StageContentLogic      = 3
	StageTemplateEngine    = 4
	StageFAQAgent          = 5
	StageProductAgent      = 6
	StageComparisonAgent   = 7
	StageWrite             = 8
)

// StageName returns the display name of a stage number.
func StageName(stage int) string {
	switch stage {
	case StageProductParser:
		return "ProductParser"
	case StageQuestionGenerator:
		return "QuestionGenerator"
	case StageContentLogic:
		return "ContentLogic"
	case StageTemplateEngine:
		return "TemplateEngine"
	case StageFAQAgent:
		return "FAQAgent"
	case StageProductAgent:
		return "ProductAgent"
	case StageComparisonAgent:
		return "ComparisonAgent"
	case StageWrite:
		return "WriteOutputs"
	default:
		return "Unknown"
	}
}

// Stages returns every stage number in execution order.
func Stages() []int {
	return []int{
		StageProductParser,
		StageQuestionGenerator,
		StageContentLogic,
		StageTemplateEngine,
		StageFAQAgent,
		StageProductAgent,
		StageComparisonAgent,
		StageWrite,
	}
}

// StageTrace records what happened to one stage.
type StageTrace struct {
	Number   int           `json:"number"`
	Name     string        `json:"name"`
	Status   StageStatus   `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunReport is the result of one pipeline run.
type RunReport struct {
	RunID      string       `json:"run_id"`
	Input      string       `json:"input"`
	Product    string       `json:"product,omitempty"`
	Status     RunStatus    `json:"status"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Stages     []StageTrace `json:"stages"`
	Outputs    []string     `json:"outputs,omitempty"`
	Failure    *StageError  `json:"failure,omitempty"`
}

// NewRunReport returns a report with every stage pending.
func NewRunReport(runID, input string, startedAt time.Time) *RunReport {
	stages := make([]StageTrace, 0, len(Stages()))
	for _, n := range Stages() {
		stages = append(stages, StageTrace{Number: n, Name: StageName(n), Status: StagePending})
	}
	return &RunReport{
		RunID:     runID,
		Input:     input,
		StartedAt: startedAt,
		Stages:    stages,
	}
}

// Stage returns the trace for a stage number.
func (r *RunReport) Stage(number int) *StageTrace {
	for i := range r.Stages {
		if r.Stages[i].Number == number {
			return &r.Stages[i]
		}
	}
	return nil
}

// Complete marks a stage completed.
func (r *RunReport) Complete(number int, detail string, d time.Duration) {
	if s := r.Stage(number); s != nil {
		s.Status = StageCompleted
		s.Detail = detail
		s.Duration = d
	}
}

// Fail marks a stage failed.
func (r *RunReport) Fail(number int, err error, d time.Duration) {
	if s := r.Stage(number); s != nil {
		s.Status = StageFailed
		s.Duration = d
		if err != nil {
			s.Error = err.Error()
		}
	}
}

// SkipPending marks every still-pending stage skipped.
func (r *RunReport) SkipPending() {
	for i := range r.Stages {
		if r.Stages[i].Status == StagePending {
			r.Stages[i].Status = StageSkipped
		}
	}
}

// Succeeded reports whether the run completed successfully.
func (r *RunReport) Succeeded() bool {
	return r.Status == RunSuccess
}

// Duration returns the wall-clock time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedStages returns the traces of every failed stage.
func (r *RunReport) FailedStages() []StageTrace {
	var out []StageTrace
	for _, s := range r.Stages {
		if s.Status == StageFailed {
			out = append(out, s)
		}
	}
	return out
}

// RunSummary is a stored run as listed by history.
type RunSummary struct {
	RunID     string        `json:"run_id"`
	Input     string        `json:"input"`
	Product   string        `json:"product"`
	Status    RunStatus     `json:"status"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	FailedAt  string        `json:"failed_at,omitempty"`
	OutputDir string        `json:"output_dir,omitempty"`
}

// Summary condenses the report for history listings.
func (r *RunReport) Summary() RunSummary {
	s := RunSummary{
		RunID:     r.RunID,
		Input:     r.Input,
		Product:   r.Product,
		Status:    r.Status,
		StartedAt: r.StartedAt,
		Duration:  r.Duration(),
	}
	if r.Failure != nil {
		s.FailedAt = r.Failure.Name
	}
	if len(r.Outputs) > 0 {
		s.OutputDir = filepath.Dir(r.Outputs[0])
	}
	return s
}
