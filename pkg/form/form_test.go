package form_test

import (
	"testing"

	"github.com/bigbit/approvalflow/pkg/form"
	"github.com/bigbit/approvalflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewSchema() models.FormSchema {
	return models.FormSchema{
		Key:   "design_input_review",
		Title: "设计输入评审",
		Fields: []models.SchemaField{
			{Key: "projectName", Title: "项目名称", Kind: models.FieldText, Required: true, MaxLength: 64},
			{Key: "reviewOpinion", Title: "评审意见", Kind: models.FieldTextarea, Required: true, MinLength: 10},
			{Key: "priority", Title: "优先级", Kind: models.FieldSelect, Default: "normal"},
			{Key: "dueDate", Title: "截止日期", Kind: models.FieldDate},
			{Key: "estimatedDays", Title: "预计天数", Kind: models.FieldNumber},
			{Key: "needsFollowUp", Title: "需要跟进", Kind: models.FieldBoolean},
		},
	}
}

func TestNewRejectsMalformedSchemas(t *testing.T) {
	tests := []struct {
		name    string
		schema  models.FormSchema
		wantErr error
	}{
		{
			name:    "no fields",
			schema:  models.FormSchema{Key: "empty"},
			wantErr: form.ErrNoFields,
		},
		{
			name: "duplicate key",
			schema: models.FormSchema{Fields: []models.SchemaField{
				{Key: "a", Title: "A", Kind: models.FieldText},
				{Key: "a", Title: "A again", Kind: models.FieldText},
			}},
			wantErr: form.ErrDuplicateFieldKey,
		},
		{
			name: "unknown kind",
			schema: models.FormSchema{Fields: []models.SchemaField{
				{Key: "a", Title: "A", Kind: "richtext"},
			}},
			wantErr: form.ErrUnknownFieldKind,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := form.New(tc.schema, nil)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewAppliesDefaultsThenInitialValues(t *testing.T) {
	f, err := form.New(reviewSchema(), map[string]any{
		"projectName": "桥梁改造",
		"ignored":     "dropped",
	})
	require.NoError(t, err)

	value, ok := f.Get("priority")
	require.True(t, ok)
	assert.Equal(t, "normal", value)

	value, ok = f.Get("projectName")
	require.True(t, ok)
	assert.Equal(t, "桥梁改造", value)

	_, ok = f.Get("ignored")
	assert.False(t, ok, "initial values outside the schema must be dropped")
}

func TestPatternSwitchPreservesValues(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	require.NoError(t, f.Set("projectName", "厂房扩建"))

	f.SetPattern(form.PatternReadPretty)
	assert.ErrorIs(t, f.Set("projectName", "overwritten"), form.ErrFieldNotEditable)

	f.SetPattern(form.PatternEditable)

	value, _ := f.Get("projectName")
	assert.Equal(t, "厂房扩建", value, "flipping patterns must not lose values")
}

func TestSetRejectsUnknownAndReadonlyFields(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Set("nope", 1), form.ErrUnknownField)

	f.ApplyPermissions(map[string]models.PermissionLevel{
		"reviewOpinion": models.PermissionReadonly,
	})
	assert.ErrorIs(t, f.Set("reviewOpinion", "同意"), form.ErrFieldNotEditable)
}

func TestFieldsOmitHiddenAndMarkEditable(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	f.ApplyPermissions(map[string]models.PermissionLevel{
		"reviewOpinion": models.PermissionHidden,
		"projectName":   models.PermissionReadonly,
	})

	states := f.Fields()
	require.Len(t, states, 5, "hidden fields are omitted, not disabled")

	assert.Equal(t, "projectName", states[0].Field.Key)
	assert.False(t, states[0].Editable)
	assert.Equal(t, form.ControlInput, states[0].Control)

	assert.Equal(t, "priority", states[1].Field.Key)
	assert.True(t, states[1].Editable)
	assert.Equal(t, form.ControlSelect, states[1].Control)
}

func TestSubscribeNotifiesSynchronouslyAndUnsubscribes(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	var first, second int

	unsubscribe := f.Subscribe(func(map[string]any) { first++ })
	f.Subscribe(func(values map[string]any) {
		second++

		assert.Equal(t, "改扩建", values["projectName"])
	})

	require.NoError(t, f.Set("projectName", "改扩建"))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)

	unsubscribe()

	require.NoError(t, f.Set("estimatedDays", 3))
	assert.Equal(t, 1, first, "unsubscribed callback must not fire again")
	assert.Equal(t, 2, second, "other subscriptions are unaffected")
}

func TestValidateCollectsAllFieldErrors(t *testing.T) {
	f, err := form.New(reviewSchema(), map[string]any{
		"reviewOpinion": "太短",
		"estimatedDays": "three",
	})
	require.NoError(t, err)

	fieldErrors := f.Validate()
	require.Len(t, fieldErrors, 3)
	assert.Equal(t, "projectName", fieldErrors[0].Key)
	assert.Equal(t, "reviewOpinion", fieldErrors[1].Key)
	assert.Equal(t, "estimatedDays", fieldErrors[2].Key)
}

func TestValidateSkipsHiddenAndReadonlyFields(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	f.ApplyPermissions(map[string]models.PermissionLevel{
		"projectName":   models.PermissionReadonly,
		"reviewOpinion": models.PermissionHidden,
	})

	assert.Empty(t, f.Validate(), "fields the viewer cannot edit are not validated against them")
}

func TestSubmitReturnsValuesOnlyWhenValid(t *testing.T) {
	f, err := form.New(reviewSchema(), nil)
	require.NoError(t, err)

	_, err = f.Submit()

	var failed *form.ValidationFailedError

	require.ErrorAs(t, err, &failed)
	assert.NotEmpty(t, failed.Fields)

	require.NoError(t, f.Set("projectName", "市政管网"))
	require.NoError(t, f.Set("reviewOpinion", "符合设计输入要求，同意通过"))

	values, err := f.Submit()
	require.NoError(t, err)
	assert.Equal(t, "市政管网", values["projectName"])
}

func TestParseSchemaValidatesStructure(t *testing.T) {
	raw := []byte(`{
		"key": "leave_request",
		"title": "请假申请",
		"fields": [
			{"key": "reason", "title": "请假事由", "kind": "textarea", "required": true}
		]
	}`)

	schema, err := form.ParseSchema(raw)
	require.NoError(t, err)
	assert.Equal(t, "leave_request", schema.Key)
	require.Len(t, schema.Fields, 1)
	assert.Equal(t, models.FieldTextarea, schema.Fields[0].Kind)
}

func TestParseSchemaRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing fields", `{"key": "x"}`},
		{"empty fields", `{"fields": []}`},
		{"bad kind", `{"fields": [{"key": "a", "title": "A", "kind": "richtext"}]}`},
		{"field missing title", `{"fields": [{"key": "a", "kind": "text"}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := form.ParseSchema([]byte(tc.raw))
			require.ErrorIs(t, err, form.ErrMalformedSchema)
		})
	}
}

func TestControlForCoversEveryKind(t *testing.T) {
	kinds := []models.FieldKind{
		models.FieldText, models.FieldTextarea, models.FieldSelect,
		models.FieldDate, models.FieldNumber, models.FieldBoolean, models.FieldArray,
	}

	seen := make(map[form.Control]bool)

	for _, kind := range kinds {
		control, err := form.ControlFor(kind)
		require.NoError(t, err)

		seen[control] = true
	}

	assert.Len(t, seen, len(kinds), "every kind maps to a distinct control")

	_, err := form.ControlFor("richtext")
	assert.ErrorIs(t, err, form.ErrUnknownFieldKind)
}
