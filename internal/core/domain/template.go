package domain

// FieldType is the JSON type a template field renders to.
type FieldType string

// Template field types.
const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDatetime FieldType = "datetime"
	FieldArray    FieldType = "array"
	FieldObject   FieldType = "object"
)

// IsValid returns true if the field type is recognised.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldString, FieldNumber, FieldBoolean, FieldDatetime, FieldArray, FieldObject:
		return true
	default:
		return false
	}
}

// FieldSpec describes one output field.
//
// Exactly one of Default and Source normally applies: a field with a Source
// is resolved from the bindings, a field without one copies Default. Array
// fields map Items over the collection at Source; object fields render Fields.
type FieldSpec struct {
	Name     string      `yaml:"name" json:"name"`
	Type     FieldType   `yaml:"type" json:"type"`
	Default  any         `yaml:"default,omitempty" json:"default,omitempty"`
	Source   string      `yaml:"source,omitempty" json:"source,omitempty"`
	Items    []FieldSpec `yaml:"items,omitempty" json:"items,omitempty"`
	Fields   []FieldSpec `yaml:"fields,omitempty" json:"fields,omitempty"`
	Required bool        `yaml:"required,omitempty" json:"required,omitempty"`
}

// HasSource reports whether the field is bound to a source path.
func (f FieldSpec) HasSource() bool {
	return f.Source != ""
}

// TemplateDefinition is a declarative page layout. Field order is output order.
type TemplateDefinition struct {
	Name           string         `yaml:"name" json:"name"`
	PageType       PageType       `yaml:"page_type" json:"page_type"`
	Description    string         `yaml:"description,omitempty" json:"description,omitempty"`
	Fields         []FieldSpec    `yaml:"fields" json:"fields"`
	RequiredBlocks []FragmentType `yaml:"required_blocks,omitempty" json:"required_blocks,omitempty"`
}

// Field returns the top-level field with the given name.
func (d TemplateDefinition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FieldNames returns the top-level field names in order.
func (d TemplateDefinition) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}
