// Package form renders declarative form schemas into form instances:
// pattern-aware field states, value tracking with change subscriptions, and
// rule validation. Expected validation failures are ordinary return values;
// only a malformed schema is an error.
package form

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// Schema errors. These indicate programmer or configuration mistakes, not
// user input problems.
var (
	ErrMalformedSchema   = errors.New("malformed form schema")
	ErrNoFields          = errors.New("form schema declares no fields")
	ErrDuplicateFieldKey = errors.New("duplicate field key in form schema")
	ErrUnknownFieldKind  = errors.New("unknown field kind")
)

// Control is the closed set of form controls a field kind maps to.
type Control string

const (
	ControlInput        Control = "input"
	ControlTextArea     Control = "textarea"
	ControlSelect       Control = "select"
	ControlDatePicker   Control = "datePicker"
	ControlNumberPicker Control = "numberPicker"
	ControlSwitch       Control = "switch"
	ControlArrayTable   Control = "arrayTable"
)

// ControlFor maps a field kind to its control. The mapping is exhaustive
// over the closed kind set; anything else is a malformed schema.
func ControlFor(kind models.FieldKind) (Control, error) {
	switch kind {
	case models.FieldText:
		return ControlInput, nil
	case models.FieldTextarea:
		return ControlTextArea, nil
	case models.FieldSelect:
		return ControlSelect, nil
	case models.FieldDate:
		return ControlDatePicker, nil
	case models.FieldNumber:
		return ControlNumberPicker, nil
	case models.FieldBoolean:
		return ControlSwitch, nil
	case models.FieldArray:
		return ControlArrayTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFieldKind, kind)
	}
}

// metaSchema structurally validates raw schema documents before they are
// interpreted, so a server-declared schema with the wrong shape fails fast
// with a single clear error.
const metaSchema = `{
	"type": "object",
	"required": ["fields"],
	"properties": {
		"key": {"type": "string"},
		"title": {"type": "string"},
		"fields": {
			"type": "array",
			"minItems": 1,
			"items": {"$ref": "#/definitions/field"}
		}
	},
	"definitions": {
		"field": {
			"type": "object",
			"required": ["key", "title", "kind"],
			"properties": {
				"key": {"type": "string", "minLength": 1},
				"title": {"type": "string", "minLength": 1},
				"kind": {"type": "string", "enum": ["text", "textarea", "select", "date", "number", "boolean", "array"]},
				"required": {"type": "boolean"},
				"min_length": {"type": "integer", "minimum": 0},
				"max_length": {"type": "integer", "minimum": 0},
				"options": {"type": "array"},
				"items": {"type": "array", "items": {"$ref": "#/definitions/field"}}
			}
		}
	}
}`

// ParseSchema decodes and structurally validates a raw JSON schema document.
func ParseSchema(raw []byte) (*models.FormSchema, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(metaSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, details)
	}

	var schema models.FormSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSchema, err)
	}

	return &schema, nil
}

// checkSchema verifies the invariants the meta-schema cannot express over
// already-decoded schemas: unique keys and known kinds, recursively.
func checkSchema(fields []models.SchemaField, seen map[string]bool) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	for _, field := range fields {
		if seen[field.Key] {
			return fmt.Errorf("%w: %q", ErrDuplicateFieldKey, field.Key)
		}

		seen[field.Key] = true

		if _, err := ControlFor(field.Kind); err != nil {
			return err
		}

		if field.Kind == models.FieldArray && len(field.Items) > 0 {
			if err := checkSchema(field.Items, make(map[string]bool)); err != nil {
				return err
			}
		}
	}

	return nil
}
