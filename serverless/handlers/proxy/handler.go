package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

// functionNameSeparator joins a request path and HTTP method into the key
// the function table is indexed by.
const functionNameSeparator = "@"

// Invoker dispatches a serialized request to a downstream function and
// returns its serialized response. The source repository invokes AWS
// Lambda directly; no AWS SDK dependency is carried by this module, so
// Invoker is the seam a concrete transport plugs into.
type Invoker interface {
	Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error)
}

// HTTPInvoker is the default Invoker: functionName is treated as a URL and
// the payload is POSTed to it. A response with status below 400 has its body
// returned verbatim; status 400 or above is returned as an error.
type HTTPInvoker struct {
	Client *http.Client
}

// Invoke implements Invoker.
func (i HTTPInvoker) Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	client := i.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, functionName, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("proxy: failed to build downstream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy: failed to invoke downstream function: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("proxy: failed to read downstream response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("proxy: downstream function returned status %d", resp.StatusCode)
	}
	return body, nil
}

// Handler looks up "<path>@<METHOD>" in config.Functions and invokes the
// matching downstream function, replacing the exchange's output with its
// response.
type Handler struct {
	config  Config
	invoker Invoker
}

// New returns a proxy Handler bound to config. A nil invoker defaults to
// HTTPInvoker{}.
func New(config Config, invoker Invoker) *Handler {
	if invoker == nil {
		invoker = HTTPInvoker{}
	}
	return &Handler{config: config, invoker: invoker}
}

// Exec implements serverless.Handler.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enabled {
		return status.DisabledStatus(), nil
	}

	req, err := ex.TakeInput()
	if err != nil {
		return status.ServerErr("Failed to consume request."), nil
	}

	if req.Path == "" {
		return status.ClientErr("Missing path in request."), nil
	}

	functionKey := req.Path + functionNameSeparator + strings.ToUpper(req.Method)
	functionName, ok := h.config.Functions[functionKey]
	if !ok {
		return status.ClientErr("No function found for path and method combination."), nil
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return status.ServerErr("Failed to consume request."), nil
	}

	respPayload, err := h.invoker.Invoke(ctx, functionName, payload)
	if err != nil {
		return status.ServerErr("Failed to invoke downstream function."), nil
	}

	var resp serverless.Response
	if err := json.Unmarshal(respPayload, &resp); err != nil {
		return status.ServerErr("Failed to parse response from downstream function."), nil
	}

	ex.SetOutput(resp)
	return status.Completed(), nil
}
