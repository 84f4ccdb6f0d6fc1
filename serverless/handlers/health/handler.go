package health

import (
	"context"
	"net/http"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/proxy"
	"github.com/idemio/idem-serverless/status"
)

const (
	healthStatus = http.StatusOK
	healthBody   = "OK"
	healthError  = "ERROR"
)

// Handler is the terminator for a health-check route: a fixed 200/"OK"
// response, or a downstream-derived status when DownstreamEnabled is set.
// It returns REQUEST_COMPLETED (spec §8 scenario 5), diverging from the
// source repository's handler, which returns OK for this same terminal
// role.
type Handler struct {
	config  Config
	invoker proxy.Invoker
}

// New returns a health Handler bound to config. A nil invoker defaults to
// proxy.HTTPInvoker{}; it is only consulted when config.DownstreamEnabled
// is set.
func New(config Config, invoker proxy.Invoker) *Handler {
	if invoker == nil {
		invoker = proxy.HTTPInvoker{}
	}
	return &Handler{config: config, invoker: invoker}
}

// Exec implements serverless.Handler.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enabled {
		return status.DisabledStatus(), nil
	}

	responseStatus := healthStatus
	if h.config.DownstreamEnabled {
		if _, err := h.invoker.Invoke(ctx, h.config.DownstreamFunction, []byte(h.config.DownstreamFunctionHealthPayload)); err != nil {
			responseStatus = http.StatusServiceUnavailable
		}
	}

	resp := serverless.Response{Headers: map[string]string{"Content-Type": "plain/text"}}
	if responseStatus >= http.StatusOK && responseStatus < http.StatusMultipleChoices {
		resp.Status = healthStatus
		resp.Body = []byte(healthBody)
	} else {
		resp.Status = responseStatus
		resp.Body = []byte(healthError)
	}

	ex.SetOutput(resp)
	return status.Completed(), nil
}
