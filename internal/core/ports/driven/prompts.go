package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
// Every template is rendered with text/template against the stage's prompt data.
const (
	// PromptQuestions asks for the categorised question set.
	PromptQuestions = "questions"

	// PromptFAQAnswers asks for answers to the selected FAQ questions in one batch.
	PromptFAQAnswers = "faq_answers"

	// PromptProductCopy asks for the product page headline and descriptions.
	PromptProductCopy = "product_copy"

	// PromptCompetitor asks for a fictional competing product.
	PromptCompetitor = "competitor"

	// PromptStrictSuffix is appended to a prompt on its retry.
	PromptStrictSuffix = "strict_suffix"
)

// PromptNames returns every well-known prompt name.
func PromptNames() []string {
	return []string{PromptQuestions, PromptFAQAnswers, PromptProductCopy, PromptCompetitor, PromptStrictSuffix}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in default prompts.
	SetPromptStore(store PromptStore)
}
