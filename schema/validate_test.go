package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestValidateNilSchemaAcceptsAnything(t *testing.T) {
	var s *Schema
	_, issues := s.Validate(map[string]any{"anything": true})
	assert.Empty(t, issues)
}

func TestValidatePrimitives(t *testing.T) {
	t.Run("matching string", func(t *testing.T) {
		_, issues := (&Schema{Type: TypeString}).Validate("hello")
		assert.Empty(t, issues)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, issues := (&Schema{Type: TypeString}).Validate(42)
		require.Len(t, issues, 1)
		assert.Equal(t, CodeTypeMismatch, issues[0].Code)
		assert.Equal(t, 42, issues[0].Received)
	})

	t.Run("integer accepts whole float", func(t *testing.T) {
		_, issues := (&Schema{Type: TypeInteger}).Validate(float64(3))
		assert.Empty(t, issues)
	})

	t.Run("integer rejects fraction", func(t *testing.T) {
		_, issues := (&Schema{Type: TypeInteger}).Validate(3.5)
		require.Len(t, issues, 1)
		assert.Equal(t, CodeNotInteger, issues[0].Code)
	})

	t.Run("numeric bounds", func(t *testing.T) {
		s := &Schema{Type: TypeNumber, Minimum: floatPtr(0), Maximum: floatPtr(1)}
		_, issues := s.Validate(1.5)
		require.Len(t, issues, 1)
		assert.Equal(t, CodeMaximum, issues[0].Code)
	})
}

func TestValidateVoid(t *testing.T) {
	s := Void()

	_, issues := s.Validate(nil)
	assert.Empty(t, issues)

	_, issues = s.Validate("unexpected")
	require.Len(t, issues, 1)
	assert.Equal(t, CodeTypeMismatch, issues[0].Code)
}

func TestValidateEnum(t *testing.T) {
	s := &Schema{Type: TypeString, Enum: []any{"red", "green"}}

	_, issues := s.Validate("green")
	assert.Empty(t, issues)

	_, issues = s.Validate("blue")
	require.Len(t, issues, 1)
	assert.Equal(t, CodeEnum, issues[0].Code)
	assert.Equal(t, "blue", issues[0].Received)
}

func TestValidateArray(t *testing.T) {
	s := Array(&Schema{Type: TypeInteger})
	s.MinLength = intPtr(2)

	t.Run("valid tuple", func(t *testing.T) {
		_, issues := s.Validate([]any{1, 2, 3})
		assert.Empty(t, issues)
	})

	t.Run("every bad element reported", func(t *testing.T) {
		_, issues := s.Validate([]any{"a", 2, "c"})
		require.Len(t, issues, 2)
		assert.Equal(t, "/0", issues[0].Path)
		assert.Equal(t, "/2", issues[1].Path)
	})

	t.Run("too short", func(t *testing.T) {
		_, issues := s.Validate([]any{1})
		require.Len(t, issues, 1)
		assert.Equal(t, CodeMinLength, issues[0].Code)
	})
}

func TestValidateObjectAggregatesAllViolations(t *testing.T) {
	s := Object(map[string]*Schema{
		"name":  {Type: TypeString, MinLength: intPtr(1)},
		"age":   {Type: TypeInteger, Minimum: floatPtr(0)},
		"email": {Type: TypeString},
	}, "name", "age")
	s.AdditionalProperties = boolPtr(false)

	_, issues := s.Validate(map[string]any{
		"age":     -1,
		"email":   7,
		"unknown": true,
	})

	// Missing required "name", negative "age", mistyped "email", and a
	// disallowed "unknown" key: all four in one report.
	require.Len(t, issues, 4)

	codes := make(map[string]string, len(issues))
	for _, issue := range issues {
		codes[issue.Path] = issue.Code
	}
	assert.Equal(t, CodeRequired, codes["/name"])
	assert.Equal(t, CodeMinimum, codes["/age"])
	assert.Equal(t, CodeTypeMismatch, codes["/email"])
	assert.Equal(t, CodeUnknownKey, codes["/unknown"])
}

func TestValidateNestedPaths(t *testing.T) {
	s := Object(map[string]*Schema{
		"user": Object(map[string]*Schema{
			"tags": Array(&Schema{Type: TypeString}),
		}),
	})

	_, issues := s.Validate(map[string]any{
		"user": map[string]any{"tags": []any{"ok", 42}},
	})
	require.Len(t, issues, 1)
	assert.Equal(t, "/user/tags/1", issues[0].Path)
}

func TestValidatePathsEscapePointerCharacters(t *testing.T) {
	s := Object(map[string]*Schema{
		"content/type": {Type: TypeString},
	}, "a~b")
	s.AdditionalProperties = boolPtr(false)

	_, issues := s.Validate(map[string]any{
		"content/type": 7,
		"extra/key":    true,
	})
	require.Len(t, issues, 3)

	codes := make(map[string]string, len(issues))
	for _, issue := range issues {
		codes[issue.Path] = issue.Code
	}
	assert.Equal(t, CodeRequired, codes["/a~0b"])
	assert.Equal(t, CodeTypeMismatch, codes["/content~1type"])
	assert.Equal(t, CodeUnknownKey, codes["/extra~1key"])
}

func TestIssuesErr(t *testing.T) {
	var none Issues
	assert.NoError(t, none.Err())

	_, issues := (&Schema{Type: TypeString}).Validate(1)
	err := issues.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type_mismatch")
}
