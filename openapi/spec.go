// Package openapi loads an OpenAPI document and validates requests against
// it: locating the operation a (path, method) pair resolves to and
// compiling JSON-Schema fragments on demand, cached for the life of the
// process (spec §4.6).
package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// rootResourceID is the id the root document is registered under so that
// compiled schemas can $ref fragments of it.
const rootResourceID = "@@root"

// Parameter is one operation parameter (path, header, or query), or a
// $ref pointing at one declared under components.parameters.
type Parameter struct {
	Name     string         `json:"name"`
	In       string         `json:"in"`
	Required bool           `json:"required"`
	Schema   map[string]any `json:"schema"`
	Ref      string         `json:"$ref,omitempty"`

	// schemaPointer locates this parameter's schema within the root
	// document when the parameter was resolved from components.parameters;
	// nil for an inline parameter, whose schema lives under the operation
	// itself (spec §3, "every $ref resolvable against the root document").
	schemaPointer *JsonPointerPath
}

// SchemaPointer returns the JSON pointer to this parameter's schema: the
// components pointer recorded at $ref-resolution time, or operationPointer
// plus the inline parameters/<idx>/schema path for a parameter declared
// directly on the operation.
func (p Parameter) SchemaPointer(operationPointer *JsonPointerPath, idx int) *JsonPointerPath {
	if p.schemaPointer != nil {
		return p.schemaPointer.Clone()
	}
	return operationPointer.Clone().Add("parameters").Add(fmt.Sprintf("%d", idx)).Add("schema")
}

// MediaType is one entry of a requestBody's content map.
type MediaType struct {
	Schema map[string]any `json:"schema"`
}

// RequestBody describes an operation's request payload, or a $ref pointing
// at one declared under components.requestBodies.
type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
	Ref      string               `json:"$ref,omitempty"`

	// basePointer locates this requestBody within the root document when
	// it was resolved from components.requestBodies; nil for an inline
	// requestBody, which lives at the operation's own requestBody path.
	basePointer *JsonPointerPath
}

// Pointer returns the JSON pointer to this requestBody's own node: the
// components pointer recorded at $ref-resolution time, or operationPointer
// plus "requestBody" for a requestBody declared directly on the operation.
func (rb RequestBody) Pointer(operationPointer *JsonPointerPath) *JsonPointerPath {
	if rb.basePointer != nil {
		return rb.basePointer.Clone()
	}
	return operationPointer.Clone().Add("requestBody")
}

// Operation is one (path, method) endpoint.
type Operation struct {
	OperationID string                    `json:"operationId"`
	Parameters  []Parameter               `json:"parameters"`
	RequestBody *RequestBody              `json:"requestBody"`
	Security    []map[string][]string     `json:"security"`
	Responses   map[string]map[string]any `json:"responses"`
}

// PathItem maps an HTTP method (lowercase) to its Operation.
type PathItem map[string]Operation

// Components holds the OpenAPI document's reusable objects (spec §3):
// schemas, parameters, responses and request bodies that an operation's
// $ref may point at. Schema-level $refs are left to the jsonschema
// compiler, which resolves them against the root resource directly;
// Components exists for the parameter- and requestBody-level $refs the
// compiler has no notion of (grounded on idem-openapi's node_finder.rs
// ObjectOrReference::resolve).
type Components struct {
	Schemas       map[string]map[string]any `json:"schemas"`
	Parameters    map[string]Parameter      `json:"parameters"`
	Responses     map[string]map[string]any `json:"responses"`
	RequestBodies map[string]RequestBody    `json:"requestBodies"`
}

// Spec is a loaded OpenAPI document: a typed projection for navigation
// plus the raw decoded document the compiler resolves $ref and JSON
// pointer fragments against.
type Spec struct {
	Paths      map[string]PathItem
	Components Components

	schemaDoc any
	compiler  *jsonschema.Compiler
	cache     *validatorCache
}

// FromFile loads and parses an OpenAPI document from disk.
func FromFile(path string) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: failed to read spec file %q: %w", path, err)
	}
	return FromJSON(string(raw))
}

// FromJSON parses an OpenAPI document already held in memory.
func FromJSON(raw string) (*Spec, error) {
	var generic struct {
		Paths      map[string]PathItem `json:"paths"`
		Components Components          `json:"components"`
	}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return nil, fmt.Errorf("openapi: malformed specification: %w", err)
	}

	if err := resolveComponentRefs(generic.Paths, generic.Components); err != nil {
		return nil, err
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("openapi: failed to decode specification for schema resolution: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	for _, name := range []string{"date", "date-time", "email", "ipv4", "ipv6", "uuid"} {
		re := formatRegex(name)
		compiler.RegisterFormat(&jsonschema.Format{
			Name: name,
			Validate: func(v any) error {
				s, ok := v.(string)
				if !ok {
					return nil
				}
				if !re.MatchString(s) {
					return fmt.Errorf("does not match format %q", name)
				}
				return nil
			},
		})
	}
	compiler.AssertFormat()

	if err := compiler.AddResource(rootResourceID, schemaDoc); err != nil {
		return nil, fmt.Errorf("openapi: failed to register root resource: %w", err)
	}

	return &Spec{
		Paths:      generic.Paths,
		Components: generic.Components,
		schemaDoc:  schemaDoc,
		compiler:   compiler,
		cache:      newValidatorCache(),
	}, nil
}

const (
	parameterRefPrefix   = "#/components/parameters/"
	requestBodyRefPrefix = "#/components/requestBodies/"
)

// resolveComponentRefs replaces every $ref parameter and requestBody under
// paths with the component it names, recording the pointer each resolved
// value's schema actually lives at so CompileAt can find it (spec §3,
// "every $ref resolvable against the root document").
func resolveComponentRefs(paths map[string]PathItem, components Components) error {
	for _, item := range paths {
		for method, op := range item {
			for i, param := range op.Parameters {
				if param.Ref == "" {
					continue
				}
				name, ok := strings.CutPrefix(param.Ref, parameterRefPrefix)
				if !ok {
					return newError(InvalidSchema, "unsupported parameter $ref "+param.Ref)
				}
				resolved, ok := components.Parameters[name]
				if !ok {
					return newError(InvalidSchema, "unresolved parameter $ref "+param.Ref)
				}
				resolved.schemaPointer = NewJsonPointerPath().Add("components").Add("parameters").Add(name).Add("schema")
				op.Parameters[i] = resolved
			}

			if op.RequestBody != nil && op.RequestBody.Ref != "" {
				name, ok := strings.CutPrefix(op.RequestBody.Ref, requestBodyRefPrefix)
				if !ok {
					return newError(InvalidSchema, "unsupported requestBody $ref "+op.RequestBody.Ref)
				}
				resolved, ok := components.RequestBodies[name]
				if !ok {
					return newError(InvalidSchema, "unresolved requestBody $ref "+op.RequestBody.Ref)
				}
				resolved.basePointer = NewJsonPointerPath().Add("components").Add("requestBodies").Add(name)
				op.RequestBody = &resolved
			}

			item[method] = op
		}
	}
	return nil
}

// CompileAt compiles (or reuses a cached compile of) the JSON-Schema
// fragment located at pointer within the root document.
func (s *Spec) CompileAt(pointer *JsonPointerPath) (*jsonschema.Schema, error) {
	key := pointer.String()
	if schema, ok := s.cache.get(key); ok {
		return schema, nil
	}

	schema, err := s.compiler.Compile(rootResourceID + "#/" + key)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, schema)
	return schema, nil
}
