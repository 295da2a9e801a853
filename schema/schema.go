// Package schema describes and validates dynamically typed, JSON-like
// values. A Schema is a declarative shape (type, constraints, nested
// properties) attached to a state value or to a custom setter's arguments;
// Validate walks a value against it and aggregates every violation instead
// of stopping at the first one, so a caller gets one complete report.
package schema

// Type names the JSON value families a Schema can require.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeNull    Type = "null"
)

// Schema is a declarative description of an expected value shape.
// A zero Type accepts any value (constraints still apply where relevant).
type Schema struct {
	// Type restricts the value to one JSON family. Empty means any.
	Type Type `json:"type,omitempty"`

	// Description explains the value for documentation and diagnostics.
	Description string `json:"description,omitempty"`

	// Enum restricts the value to one of the listed members.
	Enum []any `json:"enum,omitempty"`

	// Required lists object keys that must be present (type "object").
	Required []string `json:"required,omitempty"`

	// Properties describes each object key (type "object").
	Properties map[string]*Schema `json:"properties,omitempty"`

	// AdditionalProperties, when explicitly false, rejects keys not
	// listed in Properties. Nil or true allows them.
	AdditionalProperties *bool `json:"additionalProperties,omitempty"`

	// Items describes array elements (type "array").
	Items *Schema `json:"items,omitempty"`

	// Minimum/Maximum bound numeric values, inclusive.
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// MinLength/MaxLength bound string length and array size.
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`
}

// Object builds an object schema from its property map and required keys.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

// Array builds an array schema with the given element schema.
func Array(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Void describes a setter that takes no arguments.
func Void() *Schema {
	return &Schema{Type: TypeNull, Description: "no arguments"}
}

// IsVoid reports whether the schema accepts only a nil argument.
func (s *Schema) IsVoid() bool {
	return s != nil && s.Type == TypeNull
}
