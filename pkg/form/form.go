package form

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/bigbit/approvalflow/pkg/models"
)

// Pattern is the overall interaction mode of a form instance.
type Pattern string

const (
	PatternEditable   Pattern = "editable"
	PatternReadPretty Pattern = "readPretty"
	PatternDisabled   Pattern = "disabled"
)

// Value errors.
var (
	ErrUnknownField     = errors.New("unknown form field")
	ErrFieldNotEditable = errors.New("form field is not editable")
)

// FieldError describes a single field failing validation.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ValidationFailedError carries all field errors from a failed submit.
type ValidationFailedError struct {
	Fields []FieldError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("form validation failed on %d field(s)", len(e.Fields))
}

// FieldState is the render-ready view of one field: its declaration, the
// control it maps to, and the effective interaction mode after combining the
// form pattern with the viewer's permission level.
type FieldState struct {
	Field    models.SchemaField
	Control  Control
	Level    models.PermissionLevel
	Editable bool
}

// Form is a live instance of a schema: current values, interaction pattern,
// per-field permission levels, and change subscribers. A form belongs to a
// single request or session flow and is not safe for concurrent use.
type Form struct {
	schema  models.FormSchema
	pattern Pattern
	values  map[string]any
	levels  map[string]models.PermissionLevel

	subscribers map[int]func(values map[string]any)
	nextSubID   int
}

// New builds a form from a schema and optional initial values. Field
// defaults apply first, then initial values on top. The schema is checked
// up front; a malformed one fails here rather than at render time.
func New(schema models.FormSchema, initial map[string]any) (*Form, error) {
	if err := checkSchema(schema.Fields, make(map[string]bool)); err != nil {
		return nil, err
	}

	form := &Form{
		schema:      schema,
		pattern:     PatternEditable,
		values:      make(map[string]any, len(schema.Fields)),
		levels:      make(map[string]models.PermissionLevel, len(schema.Fields)),
		subscribers: make(map[int]func(values map[string]any)),
	}

	for _, field := range schema.Fields {
		form.levels[field.Key] = models.PermissionEditable

		if field.Default != nil {
			form.values[field.Key] = field.Default
		}
	}

	for key, value := range initial {
		if _, ok := form.levels[key]; ok {
			form.values[key] = value
		}
	}

	return form, nil
}

// Pattern returns the current interaction mode.
func (f *Form) Pattern() Pattern {
	return f.pattern
}

// SetPattern switches the interaction mode. Values are untouched, so a form
// flipped to read-only and back keeps everything the user typed.
func (f *Form) SetPattern(pattern Pattern) {
	f.pattern = pattern
}

// ApplyPermissions overlays per-field permission levels, typically the
// output of a permission matrix resolution. Fields not mentioned keep their
// current level.
func (f *Form) ApplyPermissions(levels map[string]models.PermissionLevel) {
	for key, level := range levels {
		if _, ok := f.levels[key]; ok && level.IsValid() {
			f.levels[key] = level
		}
	}
}

// Fields returns the render states of all visible fields in declaration
// order. Hidden fields are omitted entirely, never rendered disabled.
func (f *Form) Fields() []FieldState {
	states := make([]FieldState, 0, len(f.schema.Fields))

	for _, field := range f.schema.Fields {
		level := f.levels[field.Key]
		if level == models.PermissionHidden {
			continue
		}

		control, _ := ControlFor(field.Kind)

		states = append(states, FieldState{
			Field:    field,
			Control:  control,
			Level:    level,
			Editable: f.pattern == PatternEditable && level == models.PermissionEditable,
		})
	}

	return states
}

// Set updates one field value and notifies subscribers. Unknown keys and
// fields the viewer cannot edit are rejected without touching state.
func (f *Form) Set(key string, value any) error {
	level, ok := f.levels[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}

	if f.pattern != PatternEditable || level != models.PermissionEditable {
		return fmt.Errorf("%w: %q", ErrFieldNotEditable, key)
	}

	f.values[key] = value
	f.notify()

	return nil
}

// Get returns the current value of one field.
func (f *Form) Get(key string) (any, bool) {
	value, ok := f.values[key]

	return value, ok
}

// Values returns a copy of the current values.
func (f *Form) Values() map[string]any {
	values := make(map[string]any, len(f.values))
	for key, value := range f.values {
		values[key] = value
	}

	return values
}

// Subscribe registers a callback invoked synchronously after every value
// change. The returned function removes exactly this subscription.
func (f *Form) Subscribe(fn func(values map[string]any)) func() {
	id := f.nextSubID
	f.nextSubID++
	f.subscribers[id] = fn

	return func() {
		delete(f.subscribers, id)
	}
}

func (f *Form) notify() {
	ids := make([]int, 0, len(f.subscribers))
	for id := range f.subscribers {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	for _, id := range ids {
		f.subscribers[id](f.Values())
	}
}

// Validate checks every visible editable field against its rules and
// returns one error per failing field, in declaration order. A nil result
// means the form is valid. Values are never mutated.
func (f *Form) Validate() []FieldError {
	var fieldErrors []FieldError

	for _, field := range f.schema.Fields {
		level := f.levels[field.Key]
		if level == models.PermissionHidden || level == models.PermissionReadonly {
			continue
		}

		if msg := f.checkField(field); msg != "" {
			fieldErrors = append(fieldErrors, FieldError{Key: field.Key, Message: msg})
		}
	}

	return fieldErrors
}

// Submit validates and, on success, returns the values to persist. On
// failure it returns a ValidationFailedError carrying every field error.
func (f *Form) Submit() (map[string]any, error) {
	if fieldErrors := f.Validate(); len(fieldErrors) > 0 {
		return nil, &ValidationFailedError{Fields: fieldErrors}
	}

	return f.Values(), nil
}

func (f *Form) checkField(field models.SchemaField) string {
	value, present := f.values[field.Key]
	if !present || isEmpty(value) {
		if field.Required {
			return fmt.Sprintf("%s is required", field.Title)
		}

		return ""
	}

	switch field.Kind {
	case models.FieldText, models.FieldTextarea, models.FieldSelect, models.FieldDate:
		text, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%s must be a string", field.Title)
		}

		length := utf8.RuneCountInString(text)
		if field.MinLength > 0 && length < field.MinLength {
			return fmt.Sprintf("%s must be at least %d characters", field.Title, field.MinLength)
		}

		if field.MaxLength > 0 && length > field.MaxLength {
			return fmt.Sprintf("%s must be at most %d characters", field.Title, field.MaxLength)
		}
	case models.FieldNumber:
		switch value.(type) {
		case int, int64, float64:
		default:
			return fmt.Sprintf("%s must be a number", field.Title)
		}
	case models.FieldBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("%s must be a boolean", field.Title)
		}
	case models.FieldArray:
		if _, ok := value.([]any); !ok {
			return fmt.Sprintf("%s must be a list", field.Title)
		}
	}

	return ""
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}
