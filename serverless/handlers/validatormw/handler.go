package validatormw

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/idemio/idem-serverless/openapi"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

// Handler validates requests (and, best-effort, responses) against a
// pre-compiled OpenAPI specification.
type Handler struct {
	config Config
	spec   *openapi.Spec
}

// New returns a validator Handler bound to config and a spec already
// loaded via openapi.FromFile. spec must be non-nil when either
// ValidateRequest or ValidateResponse is set.
func New(config Config, spec *openapi.Spec) *Handler {
	return &Handler{config: config, spec: spec}
}

// Exec implements serverless.Handler. It does not know which phase the
// route configuration placed it in: when ValidateRequest is set and the
// input is still present it validates the request, and when
// ValidateResponse is set and both input and output are present it
// validates the output against the operation's response schema. The
// executor does not act on a response handler's returned status to abort
// the chain, so ValidateResponse failures reported from the response phase
// are observability rather than enforcement.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enable {
		return status.DisabledStatus(), nil
	}

	req, reqErr := ex.Input()

	if h.config.ValidateRequest && reqErr == nil && req.Path != "" {
		if h.spec == nil {
			return status.ServerErr("validator handler: no OpenAPI specification loaded"), nil
		}
		if err := h.spec.ValidateRequest(req.Path, req.Method, req.Body, req.Headers, req.Query); err != nil {
			return status.ClientErr("Request validation failed").WithDescription(err.Error()), nil
		}
	}

	if h.config.ValidateResponse {
		if resp, err := ex.Output(); err == nil && reqErr == nil && req.Path != "" {
			if h.spec == nil {
				return status.ServerErr("validator handler: no OpenAPI specification loaded"), nil
			}
			if err := h.validateResponse(req.Path, req.Method, resp); err != nil {
				return status.ClientErr("Response validation failed").WithDescription(err.Error()), nil
			}
		}
	}

	return status.Ok(), nil
}

func (h *Handler) validateResponse(path, method string, resp *serverless.Response) error {
	found, err := h.spec.FindOperation(path, method)
	if err != nil {
		return err
	}

	statusKey := strconv.Itoa(resp.Status)
	responseObj, ok := found.Operation.Responses[statusKey]
	if !ok {
		responseObj, ok = found.Operation.Responses["default"]
		if !ok {
			return nil
		}
		statusKey = "default"
	}

	content, _ := responseObj["content"].(map[string]any)
	if content == nil {
		return nil
	}

	contentType, ok := lookupContentType(resp.Headers)
	if !ok {
		return nil
	}
	media, ok := content[contentType].(map[string]any)
	if !ok {
		return nil
	}
	schemaMap, ok := media["schema"].(map[string]any)
	if !ok || schemaMap == nil {
		return nil
	}

	pointer := found.Pointer.Clone().Add("responses").Add(statusKey).Add("content").Add(contentType).Add("schema")
	schema, err := h.spec.CompileAt(pointer)
	if err != nil {
		return err
	}

	var instance any
	if err := json.Unmarshal(resp.Body, &instance); err != nil {
		return err
	}
	return schema.Validate(instance)
}

func lookupContentType(headers map[string]string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, "content-type") {
			return strings.TrimSpace(strings.SplitN(v, ";", 2)[0]), true
		}
	}
	return "", false
}
