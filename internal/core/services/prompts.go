package services

import (
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
)

// promptProduct is the flattened view of a product that prompt templates see.
type promptProduct struct {
	Name          string
	Concentration string
	SkinTypes     string
	Ingredients   string
	Benefits      string
	Usage         string
	SideEffects   string
	Price         string
}

func newPromptProduct(p domain.Product) promptProduct {
	return promptProduct{
		Name:          p.Name,
		Concentration: p.DisplayConcentration(),
		SkinTypes:     joinOrNA(p.SkinTypes),
		Ingredients:   joinOrNA(p.Ingredients),
		Benefits:      joinOrNA(p.Benefits),
		Usage:         orNA(p.Usage),
		SideEffects:   orNA(p.SideEffects),
		Price:         p.DisplayPrice(),
	}
}

type questionsPromptData struct {
	Product     promptProduct
	Categories  string
	Count       int
	PerCategory int
}

type faqPromptData struct {
	Product     promptProduct
	Questions   []domain.Question
	Frequency   string
	Precautions string
}

type productCopyPromptData struct {
	Product   promptProduct
	Hero      string
	Frequency string
	Warnings  string
}

type competitorPromptData struct {
	Product  promptProduct
	Currency string
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return domain.NotAvailable
	}
	return strings.Join(items, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return domain.NotAvailable
	}
	return s
}
