package router

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamType is one of the OpenAPI-style scalar types a path parameter may
// declare (spec §4.4).
type ParamType string

const (
	ParamBoolean ParamType = "boolean"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamString  ParamType = "string"
)

// Segment is one component of a parsed path template: either a literal that
// must match the incoming segment verbatim, or a named, typed parameter.
type Segment struct {
	Literal   string
	IsParam   bool
	ParamName string
	ParamType ParamType
}

// parseTemplate splits a path template into segments. A segment written as
// "{name}" is a string-typed parameter; "{name:type}" declares one of
// boolean/integer/number/string explicitly. Leading and trailing slashes
// are ignored; empty templates yield a single root segment.
func parseTemplate(template string) ([]Segment, error) {
	trimmed := strings.Trim(template, "/")
	if trimmed == "" {
		return []Segment{{Literal: ""}}, nil
	}

	parts := strings.Split(trimmed, "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			inner := part[1 : len(part)-1]
			name, typ := inner, ParamString
			if idx := strings.IndexByte(inner, ':'); idx >= 0 {
				name = inner[:idx]
				parsedType, err := parseParamType(inner[idx+1:])
				if err != nil {
					return nil, fmt.Errorf("router: template %q: %w", template, err)
				}
				typ = parsedType
			}
			if name == "" {
				return nil, fmt.Errorf("router: template %q: empty parameter name", template)
			}
			segments = append(segments, Segment{IsParam: true, ParamName: name, ParamType: typ})
			continue
		}
		segments = append(segments, Segment{Literal: part})
	}
	return segments, nil
}

func parseParamType(s string) (ParamType, error) {
	switch ParamType(s) {
	case ParamBoolean, ParamInteger, ParamNumber, ParamString:
		return ParamType(s), nil
	default:
		return "", fmt.Errorf("unknown parameter type %q", s)
	}
}

// coerce attempts a lexical cast of raw to t, returning the JSON-shaped
// value on success (bool, float64 or string).
func coerce(raw string, t ParamType) (any, error) {
	switch t {
	case ParamBoolean:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to boolean", raw)
		}
		return v, nil
	case ParamInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to integer", raw)
		}
		return float64(v), nil
	case ParamNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot cast %q to number", raw)
		}
		return v, nil
	case ParamString:
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown parameter type %q", t)
	}
}
