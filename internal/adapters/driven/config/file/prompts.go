package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompts from user-editable files in a directory.
//
// The directory is seeded with the built-in prompts on first use. A file that
// is missing, empty or not a valid template is replaced by its built-in text,
// so a bad edit degrades a prompt instead of failing every run.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
// Each prompt is a text/template rendered against the calling stage's data.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptQuestions: `You write customer questions about a skincare product.

PRODUCT DATA:
- Name: {{.Product.Name}}
- Concentration: {{.Product.Concentration}}
- Skin Types: {{.Product.SkinTypes}}
- Key Ingredients: {{.Product.Ingredients}}
- Benefits: {{.Product.Benefits}}
- How to Use: {{.Product.Usage}}
- Side Effects: {{.Product.SideEffects}}
- Price: {{.Product.Price}}

REQUIREMENTS:
1. Generate at least {{.Count}} questions in total.
2. Generate at least {{.PerCategory}} questions for every category.
3. Base every question ONLY on the product data above.
4. Write questions a real shopper would ask.

CATEGORIES: {{.Categories}}
- informational: what the product is, its ingredients, general information
- usage: how and when to apply it, routines
- safety: side effects, precautions, skin reactions
- purchase: price, value, where to buy
- comparison: alternatives and how it compares to other products

Respond with JSON of exactly this shape:
{"questions":[{"question":"...","category":"informational"}]}`,

	driven.PromptFAQAnswers: `You answer customer questions for a skincare product FAQ.

PRODUCT DATA:
- Name: {{.Product.Name}}
- Concentration: {{.Product.Concentration}}
- Skin Types: {{.Product.SkinTypes}}
- Key Ingredients: {{.Product.Ingredients}}
- Benefits: {{.Product.Benefits}}
- How to Use: {{.Product.Usage}}
- Frequency: {{.Frequency}}
- Side Effects: {{.Product.SideEffects}}
- Precautions: {{.Precautions}}
- Price: {{.Product.Price}}

Answer each question in two or three sentences using ONLY the product data.
If the data does not cover a question, say so plainly.

QUESTIONS:
{{range $i, $q := .Questions}}{{$i}}. [{{$q.Category}}] {{$q.Text}}
{{end}}
Respond with JSON of exactly this shape, one entry per question in the same order:
{"faqs":[{"question":"...","answer":"...","category":"..."}]}`,

	driven.PromptProductCopy: `You write product page copy for a skincare product.

PRODUCT DATA:
- Name: {{.Product.Name}}
- Concentration: {{.Product.Concentration}}
- Skin Types: {{.Product.SkinTypes}}
- Key Ingredients: {{.Product.Ingredients}}
- Hero Ingredient: {{.Hero}}
- Benefits: {{.Product.Benefits}}
- How to Use: {{.Product.Usage}}
- Frequency: {{.Frequency}}
- Side Effects: {{.Product.SideEffects}}
- Warnings: {{.Warnings}}
- Price: {{.Product.Price}}

Use ONLY the product data. Do not invent claims, awards or ingredients.

Respond with JSON of exactly this shape:
{"headline":"...","description":"...","ingredients_description":"...","benefits_description":"...","usage_tips":["..."],"precautions":["..."]}`,

	driven.PromptCompetitor: `You invent a FICTIONAL competitor for a skincare product so the two can be compared.

PRODUCT A:
- Name: {{.Product.Name}}
- Concentration: {{.Product.Concentration}}
- Skin Types: {{.Product.SkinTypes}}
- Key Ingredients: {{.Product.Ingredients}}
- Benefits: {{.Product.Benefits}}
- Price: {{.Product.Price}}

REQUIREMENTS:
1. The product is fictional. Never use a real brand or product name.
2. It must be a plausible competitor in the same category with a different name.
3. Use different but believable ingredients and benefits.
4. Price it in {{.Currency}} within a similar range.

Respond with JSON of exactly this shape:
{"product_name":"...","concentration":"...","skin_type":["..."],"key_ingredients":["..."],"benefits":["..."],"how_to_use":"...","side_effects":"...","price":"..."}`,

	driven.PromptStrictSuffix: `Your previous answer could not be used. Respond with ONLY the JSON object described above.
No markdown, no code fences, no commentary.`,
}

// NewPromptStore creates a prompt store rooted at dir.
// An empty dir means ~/.pagegen/prompts. No I/O happens until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".pagegen", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Load returns the named prompt. Results are cached until Reload.
func (s *PromptStore) Load(name string) (string, error) {
	builtIn, ok := defaultPrompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		return builtIn, nil
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt = s.read(name, builtIn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so the next Load reads the files again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Path returns the file backing the named prompt.
func (s *PromptStore) Path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// read returns the edited prompt for name, or builtIn when the file cannot be used.
func (s *PromptStore) read(name, builtIn string) string {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Cannot read prompt %s, using built-in: %v", path, err)
		}
		return builtIn
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.Warn("Prompt %s is empty, using built-in", path)
		return builtIn
	}
	if _, err := template.New(name).Parse(text); err != nil {
		logger.Warn("Prompt %s is not a valid template, using built-in: %v", path, err)
		return builtIn
	}
	return text
}

// seed creates the directory and writes any built-in prompt that has no file yet.
// Only a directory that cannot be created disables the files.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = err
		logger.Warn("Cannot create prompt directory %s, using built-in prompts: %v", s.dir, err)
		return
	}

	for _, name := range driven.PromptNames() {
		if err := writeIfMissing(s.Path(name), defaultPrompts[name]); err != nil {
			logger.Warn("Cannot write default prompt %s: %v", name, err)
		}
	}
	if err := writeIfMissing(filepath.Join(s.dir, "README.md"), promptsReadme); err != nil {
		logger.Warn("Cannot write prompt README: %v", err)
	}
}

// writeIfMissing creates path with content unless it already exists.
func writeIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	return f.Close()
}

const promptsReadme = `# pagegen Prompts

This directory contains the prompts pagegen sends to the LLM.

## Files

- ` + "`questions.txt`" + ` - Generates the categorised question set
- ` + "`faq_answers.txt`" + ` - Answers the selected FAQ questions in one batch
- ` + "`product_copy.txt`" + ` - Writes the product page headline and descriptions
- ` + "`competitor.txt`" + ` - Invents the fictional product for the comparison page
- ` + "`strict_suffix.txt`" + ` - Appended to a prompt when its first answer was unusable

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next run.
Delete a file to restore its built-in text.

## Template Syntax

Prompts are Go text/template documents. Keep the ` + "`{{.Field}}`" + ` references
intact: a reference the pipeline does not provide fails the run, and a file
that does not parse is ignored in favour of the built-in prompt.
Every prompt must still ask for the JSON shape shown at its end.
`
