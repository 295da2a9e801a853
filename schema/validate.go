package schema

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"cedarstate/patch"
)

// Validate walks value against the schema and returns the value together
// with every violation found. The walk never stops early: a failed type
// check still descends where it can, so the caller sees the full picture
// in one report. A nil schema accepts anything.
func (s *Schema) Validate(value any) (any, Issues) {
	var issues Issues
	if s != nil {
		s.validate("", value, &issues)
	}
	return value, issues
}

func (s *Schema) validate(path string, value any, issues *Issues) {
	if s == nil {
		return
	}

	if s.Type != "" && !typeMatches(s.Type, value) {
		issues.add(path, CodeTypeMismatch,
			fmt.Sprintf("expected %s, got %s", s.Type, typeName(value)),
			value, string(s.Type))
		return
	}

	if len(s.Enum) > 0 && !enumContains(s.Enum, value) {
		issues.add(path, CodeEnum,
			fmt.Sprintf("value %v is not one of the allowed members", value),
			value, s.Enum)
	}

	switch v := value.(type) {
	case map[string]any:
		s.validateObject(path, v, issues)
	case []any:
		s.validateArray(path, v, issues)
	case string:
		s.validateString(path, v, issues)
	default:
		if f, ok := asNumber(value); ok {
			s.validateNumber(path, f, value, issues)
		}
	}
}

func (s *Schema) validateObject(path string, obj map[string]any, issues *Issues) {
	for _, req := range s.Required {
		if _, ok := obj[req]; !ok {
			issues.add(path+"/"+patch.EscapeToken(req), CodeRequired,
				fmt.Sprintf("missing required key %q", req), nil, req)
		}
	}
	for key, val := range obj {
		child, known := s.Properties[key]
		if !known {
			if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				issues.add(path+"/"+patch.EscapeToken(key), CodeUnknownKey,
					fmt.Sprintf("key %q is not allowed", key), val, nil)
			}
			continue
		}
		child.validate(path+"/"+patch.EscapeToken(key), val, issues)
	}
}

func (s *Schema) validateArray(path string, arr []any, issues *Issues) {
	if s.MinLength != nil && len(arr) < *s.MinLength {
		issues.add(path, CodeMinLength,
			fmt.Sprintf("array has %d elements, needs at least %d", len(arr), *s.MinLength),
			len(arr), *s.MinLength)
	}
	if s.MaxLength != nil && len(arr) > *s.MaxLength {
		issues.add(path, CodeMaxLength,
			fmt.Sprintf("array has %d elements, allows at most %d", len(arr), *s.MaxLength),
			len(arr), *s.MaxLength)
	}
	if s.Items != nil {
		for i, elem := range arr {
			s.Items.validate(fmt.Sprintf("%s/%d", path, i), elem, issues)
		}
	}
}

func (s *Schema) validateString(path, str string, issues *Issues) {
	n := utf8.RuneCountInString(str)
	if s.MinLength != nil && n < *s.MinLength {
		issues.add(path, CodeMinLength,
			fmt.Sprintf("string has %d characters, needs at least %d", n, *s.MinLength),
			str, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		issues.add(path, CodeMaxLength,
			fmt.Sprintf("string has %d characters, allows at most %d", n, *s.MaxLength),
			str, *s.MaxLength)
	}
}

func (s *Schema) validateNumber(path string, f float64, raw any, issues *Issues) {
	if s.Type == TypeInteger && f != math.Trunc(f) {
		issues.add(path, CodeNotInteger,
			fmt.Sprintf("%v is not an integer", raw), raw, string(TypeInteger))
	}
	if s.Minimum != nil && f < *s.Minimum {
		issues.add(path, CodeMinimum,
			fmt.Sprintf("%v is below the minimum %v", raw, *s.Minimum),
			raw, *s.Minimum)
	}
	if s.Maximum != nil && f > *s.Maximum {
		issues.add(path, CodeMaximum,
			fmt.Sprintf("%v is above the maximum %v", raw, *s.Maximum),
			raw, *s.Maximum)
	}
}

func typeMatches(t Type, value any) bool {
	switch t {
	case TypeNull:
		return value == nil
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeNumber, TypeInteger:
		_, ok := asNumber(value)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}

// typeName renders a value's JSON family for diagnostics.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := asNumber(value); ok {
		return "number"
	}
	return reflect.TypeOf(value).String()
}

func enumContains(enum []any, value any) bool {
	for _, member := range enum {
		if reflect.DeepEqual(member, value) {
			return true
		}
		mf, mok := asNumber(member)
		vf, vok := asNumber(value)
		if mok && vok && mf == vf {
			return true
		}
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
