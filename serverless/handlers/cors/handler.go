package cors

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/status"
)

const originAttachment = "cors.origin"

// Handler enforces an origin allow-list, answers CORS preflight requests
// directly, and decorates non-preflight responses with
// Access-Control-Allow-Origin once they exist.
type Handler struct {
	config Config
}

// New returns a CORS Handler bound to config.
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
		return status.ServerErr("cors handler: request not present"), nil
	}

	originHeader, found := findHeader(req.Headers, "origin")
	if !found {
		return status.Ok(), nil
	}
	origin := removeDefaultPort(originHeader)

	allowedOrigins := append([]string{}, h.config.AllowedOrigins...)
	allowedMethods := append([]string{}, h.config.AllowedMethods...)
	for prefix, overlay := range h.config.PathPrefixCorsConfig {
		if strings.HasPrefix(req.Path, prefix) {
			allowedOrigins = append(allowedOrigins, overlay.AllowedOrigins...)
			allowedMethods = append(allowedMethods, overlay.AllowedMethods...)
			break
		}
	}

	isPreflight := strings.EqualFold(req.Method, "OPTIONS")
	originAllowed := containsFold(allowedOrigins, origin)

	if isPreflight {
		if !originAllowed {
			// Completed rather than ClientErr: the 403 is set directly on the
			// response so Pipeline.Handle must not overwrite it with the
			// generic 400 client-error mapping.
			ex.SetOutput(serverless.Response{Status: 403, Headers: map[string]string{}})
			return status.Completed(), nil
		}

		resp := serverless.Response{Headers: map[string]string{
			"Access-Control-Allow-Origin":      origin,
			"Vary":                             "Origin",
			"Access-Control-Allow-Methods":     strings.Join(allowedMethods, ","),
			"Access-Control-Allow-Credentials": "true",
			"Access-Control-Max-Age":           "3600",
		}}
		if reqHeaders, ok := findHeader(req.Headers, "access-control-request-headers"); ok {
			resp.Headers["Access-Control-Allow-Headers"] = reqHeaders
		} else {
			resp.Headers["Access-Control-Allow-Headers"] = "Content-Type, WWW-Authenticate, Authorization"
		}
		ex.SetOutput(resp)
		return status.Completed(), nil
	}

	if !originAllowed {
		return status.ClientErr("Origin is forbidden"), nil
	}

	exchange.Add(ex.Attachments(), originAttachment, origin)
	ex.AddOutputListener(func(resp *serverless.Response, attachments *exchange.Attachments) {
		if resp.Headers == nil {
			resp.Headers = map[string]string{}
		}
		if value, ok := exchange.Get[string](attachments, originAttachment); ok {
			resp.Headers["Access-Control-Allow-Origin"] = value
		}
	})

	return status.Ok(), nil
}

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

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

// removeDefaultPort trims an explicit ":80" off an http origin or ":443"
// off an https origin (spec §8, "CORS default-port trimming"), leaving
// every other origin, including IPv6 host literals, unchanged.
func removeDefaultPort(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return origin
	}

	port := u.Port()
	if port == "" {
		return origin
	}

	isDefault := (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443")
	if !isDefault {
		return origin
	}

	host := u.Hostname()
	if strings.Contains(host, ":") {
		host = fmt.Sprintf("[%s]", host)
	}
	return u.Scheme + "://" + host
}
