package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driving"
)

// Ensure TemplateEngine implements the interface.
var _ driving.TemplateService = (*TemplateEngine)(nil)

// selfPath refers to the current scope, e.g. each element of a string list.
const selfPath = "."

var (
	bindingsType  = reflect.TypeOf(domain.Bindings{})
	marshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
)

// EngineOption configures a TemplateEngine.
type EngineOption func(*TemplateEngine)

// WithMissingValue sets the value rendered for unresolved sources.
func WithMissingValue(v any) EngineOption {
	return func(e *TemplateEngine) {
		e.missing = v
	}
}

// TemplateEngine renders declarative page templates against bindings.
// Definitions are validated once at construction; rendering is deterministic
// and safe for concurrent use.
type TemplateEngine struct {
	defs    map[string]domain.TemplateDefinition
	names   []string
	missing any
}

// NewTemplateEngine validates defs and returns an engine serving them.
// Any invalid definition is reported as a *domain.TemplateError.
func NewTemplateEngine(defs []domain.TemplateDefinition, opts ...EngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		defs:    make(map[string]domain.TemplateDefinition, len(defs)),
		missing: domain.NotAvailable,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, &domain.TemplateError{Template: "<unnamed>", Reason: "template name is required"}
		}
		if _, dup := e.defs[def.Name]; dup {
			return nil, &domain.TemplateError{Template: def.Name, Reason: "duplicate template"}
		}
		if err := validateDefinition(def); err != nil {
			return nil, err
		}
		e.defs[def.Name] = def
		e.names = append(e.names, def.Name)
	}
	sort.Strings(e.names)
	return e, nil
}

// Names returns the loaded template names in sorted order.
func (e *TemplateEngine) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Definition returns the named template.
func (e *TemplateEngine) Definition(name string) (domain.TemplateDefinition, error) {
	def, ok := e.defs[name]
	if !ok {
		return domain.TemplateDefinition{}, fmt.Errorf("%w: template %q", domain.ErrNotFound, name)
	}
	return def, nil
}

// Has reports whether a template with the given name is loaded.
func (e *TemplateEngine) Has(name string) bool {
	_, ok := e.defs[name]
	return ok
}

// Render applies the named template to bindings.
func (e *TemplateEngine) Render(name string, bindings domain.Bindings) (*domain.Document, error) {
	def, ok := e.defs[name]
	if !ok {
		return nil, &domain.TemplateError{Template: name, Reason: "unknown template"}
	}
	for _, block := range def.RequiredBlocks {
		if !bindings.Blocks.Has(block) {
			return nil, &domain.TemplateError{Template: name, Field: "blocks." + string(block), Reason: "required block missing"}
		}
	}

	root, err := toTree(bindings)
	if err != nil {
		return nil, &domain.TemplateError{Template: name, Reason: fmt.Sprintf("encode bindings: %v", err)}
	}
	return e.renderFields(name, "", def.Fields, root)
}

func (e *TemplateEngine) renderFields(tmpl, prefix string, fields []domain.FieldSpec, scope any) (*domain.Document, error) {
	doc := domain.NewDocument()
	for _, f := range fields {
		v, err := e.renderField(tmpl, prefix+f.Name, f, scope)
		if err != nil {
			return nil, err
		}
		doc.Set(f.Name, v)
	}
	return doc, nil
}

func (e *TemplateEngine) renderField(tmpl, path string, f domain.FieldSpec, scope any) (any, error) {
	if !f.HasSource() {
		if f.Type == domain.FieldObject && len(f.Fields) > 0 {
			return e.renderFields(tmpl, path+".", f.Fields, scope)
		}
		return f.Default, nil
	}

	v, ok := lookup(scope, f.Source)
	if !ok {
		if f.Required {
			return nil, &domain.TemplateError{Template: tmpl, Field: path, Reason: fmt.Sprintf("required source %q did not resolve", f.Source)}
		}
		if f.Default != nil {
			return f.Default, nil
		}
		return e.missing, nil
	}

	switch {
	case f.Type == domain.FieldArray && len(f.Items) > 0:
		list, isList := v.([]any)
		if !isList {
			return e.missing, nil
		}
		out := make([]any, 0, len(list))
		for i, elem := range list {
			item, err := e.renderFields(tmpl, fmt.Sprintf("%s[%d].", path, i), f.Items, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	case f.Type == domain.FieldObject && len(f.Fields) > 0:
		return e.renderFields(tmpl, path+".", f.Fields, v)
	default:
		return v, nil
	}
}

// toTree converts bindings to generic JSON values, keeping numbers exact.
func toTree(b domain.Bindings) (any, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// lookup resolves a dotted path. Numeric segments index lists.
// A null value counts as unresolved.
func lookup(scope any, path string) (any, bool) {
	if path == selfPath {
		return scope, scope != nil
	}
	cur := scope
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

// validateDefinition checks a definition against the bindings schema.
func validateDefinition(def domain.TemplateDefinition) error {
	if !def.PageType.IsValid() {
		return &domain.TemplateError{Template: def.Name, Reason: fmt.Sprintf("unknown page type %q", def.PageType)}
	}
	for _, block := range def.RequiredBlocks {
		if !block.IsValid() {
			return &domain.TemplateError{Template: def.Name, Field: "required_blocks", Reason: fmt.Sprintf("unknown block %q", block)}
		}
	}
	if len(def.Fields) == 0 {
		return &domain.TemplateError{Template: def.Name, Reason: "template has no fields"}
	}
	return validateFields(def.Name, "", def.Fields, bindingsType)
}

func validateFields(tmpl, prefix string, fields []domain.FieldSpec, scope reflect.Type) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		path := prefix + f.Name
		fail := func(format string, args ...any) error {
			return &domain.TemplateError{Template: tmpl, Field: path, Reason: fmt.Sprintf(format, args...)}
		}

		if f.Name == "" {
			return fail("field name is required")
		}
		if seen[f.Name] {
			return fail("duplicate field")
		}
		seen[f.Name] = true
		if !f.Type.IsValid() {
			return fail("unknown field type %q", f.Type)
		}
		if f.Type == domain.FieldArray && !f.HasSource() {
			return fail("array field needs a source")
		}

		target := scope
		if f.HasSource() {
			t, err := resolveType(scope, f.Source)
			if err != nil {
				return fail("source %q: %v", f.Source, err)
			}
			target = t
		}

		switch f.Type {
		case domain.FieldArray:
			elem, ok := elemType(target)
			if !ok {
				return fail("source %q is not a list", f.Source)
			}
			if len(f.Items) > 0 {
				if err := validateFields(tmpl, path+"[].", f.Items, elem); err != nil {
					return err
				}
			}
		case domain.FieldObject:
			if len(f.Fields) > 0 {
				if err := validateFields(tmpl, path+".", f.Fields, target); err != nil {
					return err
				}
			}
		default:
			if len(f.Items) > 0 || len(f.Fields) > 0 {
				return fail("only array and object fields take nested fields")
			}
		}
	}
	return nil
}

// resolveType walks a dotted path over the JSON shape of t.
// A nil type stands for an untyped value and accepts any path.
func resolveType(t reflect.Type, path string) (reflect.Type, error) {
	if path == selfPath {
		return t, nil
	}
	for _, seg := range strings.Split(path, ".") {
		if t == nil {
			return nil, nil
		}
		t = deref(t)
		if t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType) {
			return nil, fmt.Errorf("cannot descend into %s at %q", t, seg)
		}

		switch t.Kind() {
		case reflect.Struct:
			field, ok := jsonField(t, seg)
			if !ok {
				return nil, fmt.Errorf("unknown key %q", seg)
			}
			t = field
		case reflect.Slice, reflect.Array:
			if _, err := strconv.Atoi(seg); err != nil {
				return nil, fmt.Errorf("list index %q is not a number", seg)
			}
			t = t.Elem()
		case reflect.Map:
			t = t.Elem()
		case reflect.Interface:
			t = nil
		default:
			return nil, fmt.Errorf("cannot descend into %s at %q", t, seg)
		}
	}
	return t, nil
}

func elemType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, true
	}
	t = deref(t)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		return t.Elem(), true
	case reflect.Interface:
		return nil, true
	default:
		return nil, false
	}
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// jsonField finds the struct field encoded under key.
func jsonField(t reflect.Type, key string) (reflect.Type, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if name == key {
			return f.Type, true
		}
	}
	return nil, false
}
