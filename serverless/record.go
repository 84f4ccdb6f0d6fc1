// Package serverless instantiates the generic Exchange/Handler/Executor core
// for the concrete request/response records a platform event adapter decodes
// into (spec §6, "Wire events"), and wires a route table and handler
// registry into a single entry point an adapter can call per invocation.
package serverless

import (
	"strings"

	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/handler"
)

// Request is the decoded event record the core consumes. Path and Body are
// optional in the originating platform event; a missing Body is
// represented as a nil slice rather than an empty one so handlers can tell
// "no body" from "empty body".
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    []byte
}

// Response is the record the core produces, encoded back to the wire by the
// adapter.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// RequestContext is the per-invocation metadata carried alongside a
// Request/Response, standing in for the platform's own invocation context
// (deadline, request id) the way lambda_http::Context does in the source
// repository.
type RequestContext struct {
	RequestID string
}

// Exchange is the Request/Response/RequestContext instantiation of the
// generic exchange every handler in this package operates on.
type Exchange = exchange.Exchange[Request, Response, RequestContext]

// Handler is the Request/Response/RequestContext instantiation of the
// generic handler interface.
type Handler = handler.Handler[Request, Response, RequestContext]

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc = handler.Func[Request, Response, RequestContext]

// Registry maps configured handler names to Handler instances.
type Registry = handler.Registry[Request, Response, RequestContext]

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return handler.NewRegistry[Request, Response, RequestContext]()
}

// NewExchange returns an Exchange with no input, output or metadata set.
func NewExchange() *Exchange {
	return exchange.New[Request, Response, RequestContext]()
}

// HeaderValue looks up a request header case-insensitively, matching how
// API gateway-style events commonly normalize, or fail to normalize,
// header casing.
func (r *Request) HeaderValue(name string) (string, bool) {
	if v, ok := r.Headers[name]; ok {
		return v, true
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
