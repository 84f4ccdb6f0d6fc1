package header

import (
	"context"
	"strings"

	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

const (
	responseUpdateAttachment = "header.response_update"
	responseRemoveAttachment = "header.response_remove"
)

// Handler applies configured header add/remove lists to the request
// immediately and defers the response side to an output listener, so a
// response that does not exist yet (the terminator runs after this handler)
// can still be decorated once it does.
type Handler struct {
	config Config
}

// New returns a header Handler bound to config.
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
		return status.ServerErr("header handler: request not present"), nil
	}

	requestUpdate := mergeUpdate(h.config.Request.Update, nil)
	requestRemove := append([]string{}, h.config.Request.Remove...)
	responseUpdate := mergeUpdate(h.config.Response.Update, nil)
	responseRemove := append([]string{}, h.config.Response.Remove...)

	if overlay, ok := matchPathPrefix(h.config.PathPrefixHeader, req.Path); ok {
		requestUpdate = mergeUpdate(requestUpdate, overlay.Request.Update)
		requestRemove = append(requestRemove, overlay.Request.Remove...)
		responseUpdate = mergeUpdate(responseUpdate, overlay.Response.Update)
		responseRemove = append(responseRemove, overlay.Response.Remove...)
	}

	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	applyHeaders(req.Headers, requestUpdate, requestRemove)

	exchange.Add(ex.Attachments(), responseUpdateAttachment, responseUpdate)
	exchange.Add(ex.Attachments(), responseRemoveAttachment, responseRemove)

	ex.AddOutputListener(func(resp *serverless.Response, attachments *exchange.Attachments) {
		if resp.Headers == nil {
			resp.Headers = map[string]string{}
		}
		if update, ok := exchange.Get[map[string]string](attachments, responseUpdateAttachment); ok {
			for k, v := range update {
				resp.Headers[k] = v
			}
		}
		if remove, ok := exchange.Get[[]string](attachments, responseRemoveAttachment); ok {
			for _, k := range remove {
				delete(resp.Headers, k)
			}
		}
	})

	return status.Ok(), nil
}

func matchPathPrefix(overlays map[string]PathOverlay, path string) (PathOverlay, bool) {
	for prefix, overlay := range overlays {
		if strings.HasPrefix(path, prefix) {
			return overlay, true
		}
	}
	return PathOverlay{}, false
}

func mergeUpdate(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func applyHeaders(headers map[string]string, update map[string]string, remove []string) {
	for k, v := range update {
		headers[k] = v
	}
	for _, k := range remove {
		delete(headers, k)
	}
}
