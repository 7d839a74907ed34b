package models

// FieldKind is the closed set of form field controls. The form renderer maps
// each kind to a control exhaustively; schemas declaring any other kind are
// rejected as malformed.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldDate     FieldKind = "date"
	FieldNumber   FieldKind = "number"
	FieldBoolean  FieldKind = "boolean"
	FieldArray    FieldKind = "array"
)

var validFieldKinds = map[FieldKind]bool{
	FieldText:     true,
	FieldTextarea: true,
	FieldSelect:   true,
	FieldDate:     true,
	FieldNumber:   true,
	FieldBoolean:  true,
	FieldArray:    true,
}

// IsValid reports whether the kind is one of the known field controls.
func (k FieldKind) IsValid() bool {
	return validFieldKinds[k]
}

// FieldOption is one selectable choice for a select field.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SchemaField declares one field of a form schema.
type SchemaField struct {
	Key       string        `json:"key"   validate:"required"`
	Title     string        `json:"title" validate:"required"`
	Kind      FieldKind     `json:"kind"  validate:"required"`
	Required  bool          `json:"required,omitempty"`
	MinLength int           `json:"min_length,omitempty"`
	MaxLength int           `json:"max_length,omitempty"`
	Options   []FieldOption `json:"options,omitempty"` // select fields
	Items     []SchemaField `json:"items,omitempty"`   // array fields
	Default   any           `json:"default,omitempty"`
}

// FormSchema is the server-declared description a form instance is rendered
// from. Field keys are unique within a schema.
type FormSchema struct {
	Key    string        `json:"key"`
	Title  string        `json:"title,omitempty"`
	Fields []SchemaField `json:"fields"`
}
