package trace

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

const (
	correlationIDAttachment      = "trace.correlation_id"
	traceabilityIDAttachment     = "trace.traceability_id"
	correlationHeaderAttachment  = "trace.correlation_header"
	traceabilityHeaderAttachment = "trace.traceability_header"
)

// Handler finds or generates a correlation id, finds (never generates) a
// traceability id, writes the correlation id back onto the request, and
// registers an output listener to copy both onto the response when
// AddTraceToResponse is set.
type Handler struct {
	config Config
}

// New returns a traceability Handler bound to config.
func New(config Config) *Handler {
	return &Handler{config: config}
}

// Exec implements serverless.Handler.
func (h *Handler) Exec(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
	if !h.config.Enabled {
		return status.DisabledStatus(), nil
	}

	req, err := ex.InputMut()
	if err != nil {
		return status.ServerErr("traceability handler: request not present"), nil
	}

	cid, found := findHeader(req.Headers, h.config.CorrelationHeaderName)
	if !found && h.config.AutogenCorrelationID {
		cid = uuid.NewString()
		found = true
	}
	if !found {
		return status.Ok(), nil
	}

	tid, tidFound := findHeader(req.Headers, h.config.TraceabilityHeaderName)

	if h.config.AddTraceToResponse {
		exchange.Add(ex.Attachments(), correlationIDAttachment, cid)
		exchange.Add(ex.Attachments(), correlationHeaderAttachment, h.config.CorrelationHeaderName)
		if tidFound {
			exchange.Add(ex.Attachments(), traceabilityIDAttachment, tid)
			exchange.Add(ex.Attachments(), traceabilityHeaderAttachment, h.config.TraceabilityHeaderName)
		}

		ex.AddOutputListener(func(resp *serverless.Response, attachments *exchange.Attachments) {
			if resp.Headers == nil {
				resp.Headers = map[string]string{}
			}
			if header, ok := exchange.Get[string](attachments, correlationHeaderAttachment); ok {
				if value, ok := exchange.Get[string](attachments, correlationIDAttachment); ok {
					resp.Headers[header] = value
				}
			}
			if header, ok := exchange.Get[string](attachments, traceabilityHeaderAttachment); ok {
				if value, ok := exchange.Get[string](attachments, traceabilityIDAttachment); ok {
					resp.Headers[header] = value
				}
			}
		})
	}

	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers[strings.ToLower(h.config.CorrelationHeaderName)] = cid

	return status.Ok(), nil
}

// findHeader looks up name case-insensitively, mirroring the source
// repository's header-map scan.
func findHeader(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
