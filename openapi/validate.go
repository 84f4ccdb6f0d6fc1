package openapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateRequest implements spec §4.6's five-step validation: resolve the
// operation, then validate body, headers, and query parameters against
// their declared schemas, each optional and independently checked.
func (s *Spec) ValidateRequest(path, method string, body []byte, headers, query map[string]string) error {
	found, err := s.FindOperation(path, method)
	if err != nil {
		return err
	}

	if body != nil {
		if err := s.validateBody(found, body, headers); err != nil {
			return err
		}
	}

	if headers != nil {
		if err := s.validateParams(found, headers, "header", InvalidHeaders); err != nil {
			return err
		}
	}

	if query != nil {
		if err := s.validateParams(found, query, "query", InvalidQueryParameters); err != nil {
			return err
		}
	}

	return nil
}

func (s *Spec) validateBody(found *FoundOperation, body []byte, headers map[string]string) error {
	if headers == nil {
		return newError(InvalidRequest, "No content type provided")
	}

	contentType, ok := lookupHeaderCaseInsensitive(headers, "content-type")
	if !ok {
		return newError(InvalidRequest, "No content type provided")
	}

	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !(strings.HasPrefix(mediaType, "application") ||
		strings.HasPrefix(mediaType, "multipart") ||
		strings.HasPrefix(mediaType, "text")) {
		return newError(InvalidContentType, "unsupported content type "+mediaType)
	}

	if found.Operation.RequestBody == nil {
		return nil
	}
	media, ok := found.Operation.RequestBody.Content[mediaType]
	if !ok || media.Schema == nil {
		return nil
	}

	pointer := found.Operation.RequestBody.Pointer(found.Pointer).Add("content").Add(mediaType).Add("schema")
	schema, err := s.CompileAt(pointer)
	if err != nil {
		return wrapError(InvalidSchema, "failed to compile request body schema", err)
	}

	var instance any
	if err := json.Unmarshal(body, &instance); err != nil {
		return wrapError(InvalidSchema, "request body is not valid JSON", err)
	}
	if err := schema.Validate(instance); err != nil {
		return wrapError(InvalidSchema, "request body failed schema validation", err)
	}

	return nil
}

func (s *Spec) validateParams(found *FoundOperation, values map[string]string, in string, failureKind Kind) error {
	for idx, param := range found.Operation.Parameters {
		if param.In != in {
			continue
		}

		raw, present := lookupHeaderCaseInsensitive(values, param.Name)
		if !present {
			if param.Required {
				return newError(failureKind, fmt.Sprintf("missing required %s parameter %q", in, param.Name))
			}
			continue
		}

		if param.Schema == nil {
			continue
		}

		value, err := tryCastToSchema(raw, param.Schema)
		if err != nil {
			return wrapError(failureKind, fmt.Sprintf("%s parameter %q has the wrong type", in, param.Name), err)
		}

		pointer := param.SchemaPointer(found.Pointer, idx)
		schema, err := s.CompileAt(pointer)
		if err != nil {
			return wrapError(failureKind, fmt.Sprintf("failed to compile schema for %s parameter %q", in, param.Name), err)
		}
		if err := schema.Validate(value); err != nil {
			return wrapError(failureKind, fmt.Sprintf("%s parameter %q failed schema validation", in, param.Name), err)
		}
	}
	return nil
}

func lookupHeaderCaseInsensitive(values map[string]string, name string) (string, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
