package openapi

import (
	"strings"
)

// FoundOperation is the result of a successful FindOperation call: the
// matched operation plus the JSON-pointer path locating it in the root
// document.
type FoundOperation struct {
	Operation Operation
	Pointer   *JsonPointerPath
}

// FindOperation resolves (path, method) to an operation, per spec §4.6. An
// exact lookup is attempted first; failing that, every declared template is
// compared segment by segment, validating path parameters against their
// declared schema (grounded on idem-openapi's node_finder.rs).
func (s *Spec) FindOperation(path, method string) (*FoundOperation, error) {
	method = strings.ToLower(method)

	if item, ok := s.Paths[path]; ok {
		if op, ok := item[method]; ok {
			return &FoundOperation{
				Operation: op,
				Pointer:   NewJsonPointerPath().Add("paths").Add(path).Add(method),
			}, nil
		}
	}

	for template, item := range s.Paths {
		op, ok := item[method]
		if !ok {
			continue
		}
		pointer := NewJsonPointerPath().Add("paths").Add(template).Add(method)
		if s.matchPathSegments(path, template, op.Parameters, pointer) {
			return &FoundOperation{
				Operation: op,
				Pointer:   pointer,
			}, nil
		}
	}

	return nil, newError(InvalidPath, "no operation matches "+method+" "+path)
}

// matchPathSegments implements spec §4.6's path-parameter matching: lexical
// cast followed by full JSON-Schema validation against the declared schema,
// the same two-step check validateParams applies to header/query parameters
// (grounded on idem-openapi's node_finder.rs path_parameter_value_matches_type,
// which calls validate_with_schema after the cast rather than stopping at
// the cast).
func (s *Spec) matchPathSegments(actualPath, template string, params []Parameter, pointer *JsonPointerPath) bool {
	actual := strings.Split(strings.Trim(actualPath, "/"), "/")
	spec := strings.Split(strings.Trim(template, "/"), "/")
	if len(actual) != len(spec) {
		return false
	}

	for i, specSeg := range spec {
		actualSeg := actual[i]
		name, isParam := pathParamName(specSeg)
		if !isParam {
			if specSeg != actualSeg {
				return false
			}
			continue
		}

		idx, param := findParam(params, name, "path")
		if param == nil || param.Schema == nil {
			// no declared schema: the original source treats this as a pass.
			continue
		}
		value, err := tryCastToSchema(actualSeg, param.Schema)
		if err != nil {
			return false
		}

		schema, err := s.CompileAt(param.SchemaPointer(pointer, idx))
		if err != nil {
			return false
		}
		if err := schema.Validate(value); err != nil {
			return false
		}
	}
	return true
}

func pathParamName(segment string) (string, bool) {
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

func findParam(params []Parameter, name, in string) (int, *Parameter) {
	for i := range params {
		if params[i].Name == name && params[i].In == in {
			return i, &params[i]
		}
	}
	return -1, nil
}
