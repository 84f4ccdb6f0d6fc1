package openapi

import (
	"fmt"
	"strconv"
)

// schemaTypes returns the declared "type" of schema as a slice, handling
// both the single-string and multi-type-array forms OpenAPI/JSON-Schema
// allow.
func schemaTypes(schema map[string]any) []string {
	switch v := schema["type"].(type) {
	case string:
		return []string{v}
	case []any:
		types := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				types = append(types, s)
			}
		}
		return types
	default:
		return nil
	}
}

// tryCastToType attempts a lexical cast of raw to the named JSON-Schema
// type, returning the resulting JSON-shaped value.
func tryCastToType(raw string, schemaType string) (any, error) {
	switch schemaType {
	case "boolean":
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to boolean", raw)
		}
		return v, nil
	case "integer":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to integer", raw)
		}
		return float64(v), nil
	case "number":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to number", raw)
		}
		return v, nil
	case "string":
		return raw, nil
	default:
		return raw, nil
	}
}

// tryCastToSchema tries every type the schema declares, in declaration
// order, and returns the first value that casts successfully (spec §4.4,
// §4.6's "lexical cast + JSON-Schema validate").
func tryCastToSchema(raw string, schema map[string]any) (any, error) {
	types := schemaTypes(schema)
	if len(types) == 0 {
		return raw, nil
	}
	var lastErr error
	for _, t := range types {
		v, err := tryCastToType(raw, t)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
