package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunReport(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRunReport("run-1", "product.json", start)

	require.Len(t, r.Stages, 8)
	for i, s := range r.Stages {
		assert.Equal(t, i+1, s.Number)
		assert.Equal(t, StagePending, s.Status)
		assert.NotEqual(t, "Unknown", s.Name)
	}
	assert.Equal(t, time.Duration(0), r.Duration())
}

func TestRunReport_Transitions(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRunReport("run-1", "product.json", start)

	r.Complete(StageProductParser, "GlowBoost", time.Millisecond)
	r.Fail(StageQuestionGenerator, errors.New("unreachable"), time.Second)
	r.SkipPending()
	r.FinishedAt = start.Add(2 * time.Second)

	assert.Equal(t, StageCompleted, r.Stage(StageProductParser).Status)
	assert.Equal(t, "GlowBoost", r.Stage(StageProductParser).Detail)
	assert.Equal(t, StageFailed, r.Stage(StageQuestionGenerator).Status)
	assert.Equal(t, "unreachable", r.Stage(StageQuestionGenerator).Error)
	for _, n := range []int{StageContentLogic, StageTemplateEngine, StageFAQAgent, StageProductAgent, StageComparisonAgent, StageWrite} {
		assert.Equal(t, StageSkipped, r.Stage(n).Status, StageName(n))
	}

	failed := r.FailedStages()
	require.Len(t, failed, 1)
	assert.Equal(t, StageQuestionGenerator, failed[0].Number)
	assert.Equal(t, 2*time.Second, r.Duration())
	assert.False(t, r.Succeeded())
	assert.Nil(t, r.Stage(99))
}

func TestStageName(t *testing.T) {
	assert.Equal(t, "ProductParser", StageName(StageProductParser))
	assert.Equal(t, "ComparisonAgent", StageName(StageComparisonAgent))
	assert.Equal(t, "Unknown", StageName(0))
}

func TestPageType_FileName(t *testing.T) {
	assert.Equal(t, "faq.json", PageFAQ.FileName())
	assert.Equal(t, "product_page.json", PageProduct.FileName())
	assert.Equal(t, "comparison_page.json", PageComparison.FileName())
	assert.False(t, PageType("x").IsValid())
}

func TestBlocks_Has(t *testing.T) {
	b := Blocks{Benefits: &BenefitsFragment{Type: FragmentBenefits}}
	assert.True(t, b.Has(FragmentBenefits))
	assert.False(t, b.Has(FragmentSafety))
	assert.False(t, b.Has(FragmentType("bogus")))
}

func TestNewSystemInfo(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	info := NewSystemInfo(now, "pagegen", "gemini-2.5-flash", "run-1")
	assert.Equal(t, "2024-03-05T04:30:00Z", info.GeneratedAt)
	assert.Equal(t, "run-1", info.RunID)
}

func TestRunReport_Summary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRunReport("run-1", "product.json", start)
	r.Product = "GlowBoost"
	r.Status = RunFailure
	r.FinishedAt = start.Add(3 * time.Second)
	r.Failure = NewStageError(StageComparisonAgent, ErrGeneration)

	s := r.Summary()

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "GlowBoost", s.Product)
	assert.Equal(t, 3*time.Second, s.Duration)
	assert.Equal(t, "ComparisonAgent", s.FailedAt)
	assert.Empty(t, s.OutputDir)

	r.Failure = nil
	r.Outputs = []string{"out/faq.json", "out/product_page.json"}
	assert.Equal(t, "out", r.Summary().OutputDir)
}
