package file

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// Ensure TemplateSource implements the interface.
var _ driven.TemplateSource = (*TemplateSource)(nil)

//go:embed templates/*.yaml
var defaultTemplates embed.FS

// TemplateSource loads page template definitions.
// The embedded defaults are always loaded; YAML files in an optional override
// directory replace defaults of the same name or add new templates.
type TemplateSource struct {
	dir string
}

// NewTemplateSource creates a template source. An empty dir serves only the
// embedded defaults.
func NewTemplateSource(dir string) *TemplateSource {
	return &TemplateSource{dir: dir}
}

// Dir returns the override directory, if any.
func (s *TemplateSource) Dir() string {
	return s.dir
}

// Load returns every template definition, sorted by name.
func (s *TemplateSource) Load() ([]domain.TemplateDefinition, error) {
	byName := make(map[string]domain.TemplateDefinition)

	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, e := range entries {
		data, err := defaultTemplates.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded template %s: %w", e.Name(), err)
		}
		def, err := decodeTemplate(e.Name(), data)
		if err != nil {
			return nil, err
		}
		byName[def.Name] = def
	}

	if s.dir != "" {
		if err := s.loadOverrides(byName); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]domain.TemplateDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, byName[name])
	}
	return defs, nil
}

func (s *TemplateSource) loadOverrides(byName map[string]domain.TemplateDefinition) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("Template directory %s does not exist, using defaults", s.dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read template directory: %w", err)
	}

	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		def, err := decodeTemplate(e.Name(), data)
		if err != nil {
			return err
		}
		if _, ok := byName[def.Name]; ok {
			logger.Debug("Template %q overridden by %s", def.Name, e.Name())
		}
		byName[def.Name] = def
	}
	return nil
}

// decodeTemplate parses one YAML definition, rejecting unknown keys.
func decodeTemplate(file string, data []byte) (domain.TemplateDefinition, error) {
	var def domain.TemplateDefinition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return domain.TemplateDefinition{}, &domain.TemplateError{
			Template: file,
			Reason:   fmt.Sprintf("invalid YAML: %v", err),
		}
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(file, filepath.Ext(file))
	}
	return def, nil
}

// ExportDefaults writes the embedded templates into dir for customisation.
// Existing files are left untouched. Returns the paths written.
func ExportDefaults(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create template directory: %w", err)
	}
	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	var written []string
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if _, err := os.Stat(target); err == nil {
			continue
		}
		data, err := defaultTemplates.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return written, fmt.Errorf("read embedded template %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			return written, fmt.Errorf("write template %s: %w", e.Name(), err)
		}
		written = append(written, target)
	}
	return written, nil
}
