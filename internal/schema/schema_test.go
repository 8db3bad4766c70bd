package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/jax/http"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"}
	},
	"required": ["name"]
}`

func TestSchema_Validate(t *testing.T) {
	s, err := Compile(personSchema)
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"John","age":30}`, false},
		{"missing required", `{"age":30}`, true},
		{"wrong type", `{"name":"John","age":"thirty"}`, true},
		{"not json", `{ invalid`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_ValidationErrorsListViolations(t *testing.T) {
	s, err := Compile(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id"]
		}
	}`)
	require.NoError(t, err)

	err = s.Validate(`[{"id":1},{"name":"missing"}]`)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.NotEmpty(t, verrs)
	assert.Contains(t, verrs.Error(), "/1")
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": "invalid-type"}`)
	assert.Error(t, err)

	_, err = Compile(`{not json`)
	assert.Error(t, err)
}

func TestCompileValue(t *testing.T) {
	fromText, err := CompileValue(personSchema)
	require.NoError(t, err)
	assert.NoError(t, fromText.Validate(`{"name":"a"}`))

	fromDoc, err := CompileValue(map[string]any{
		"type":     "object",
		"required": []any{"token"},
	})
	require.NoError(t, err)
	assert.NoError(t, fromDoc.Validate(`{"token":"x"}`))
	assert.Error(t, fromDoc.Validate(`{}`))

	fromYAML, err := CompileValue(map[any]any{"type": "string"})
	require.NoError(t, err)
	assert.NoError(t, fromYAML.Validate(`"hi"`))

	_, err = CompileValue(nil)
	assert.Error(t, err)
}

func TestSchema_ValidateResponse(t *testing.T) {
	s, err := Compile(personSchema)
	require.NoError(t, err)

	assert.NoError(t, s.ValidateResponse(&http.Response{Text: `{"name":"jax"}`}))
	assert.Error(t, s.ValidateResponse(&http.Response{Text: `{}`}))
	assert.Error(t, s.ValidateResponse(nil))
}
