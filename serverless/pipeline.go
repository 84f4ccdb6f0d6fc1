package serverless

import (
	"context"
	"net/http"

	"github.com/idemio/idem-serverless/config"
	"github.com/idemio/idem-serverless/exchange"
	"github.com/idemio/idem-serverless/executor"
	"github.com/idemio/idem-serverless/router"
	"github.com/idemio/idem-serverless/status"
)

// pathParametersKey is the attachment name under which a matched route's
// coerced path parameters are stored, so handlers can read them without
// re-parsing the path template.
const pathParametersKey = "serverless.path_parameters"

// PathParameters returns the path parameters the router matched for this
// exchange, if any were declared on the route.
func PathParameters(ex *Exchange) (map[string]any, bool) {
	return exchange.Get[map[string]any](ex.Attachments(), pathParametersKey)
}

// Pipeline ties a compiled route table to a built handler registry, driving
// one request at a time through the executor. This realizes the
// load-config -> resolve-path -> expand-chains -> drive-handlers flow of the
// source repository's entry point, but built once at startup instead of
// once per invocation (spec §5, "handler registry... constructed at
// startup, immutable afterwards").
type Pipeline struct {
	table    *router.Table
	registry *Registry
}

// NewPipeline compiles cfg into a route table and builds every handler cfg
// declares via factories, keyed by configDir for per-handler config
// loading (spec §6). responseHandlerNames marks handler names that belong
// to the response phase rather than the request phase, since the wire
// format does not distinguish them (router.BuildWithResponseHandlers).
func NewPipeline(cfg *config.ExecutionFlowConfig, factories *FactoryRegistry, configDir string, responseHandlerNames map[string]bool) (*Pipeline, error) {
	table, err := router.BuildWithResponseHandlers(cfg, responseHandlerNames)
	if err != nil {
		return nil, err
	}

	registry, err := factories.Build(configDir, cfg.Handlers)
	if err != nil {
		return nil, err
	}

	return &Pipeline{table: table, registry: registry}, nil
}

// Handle resolves req against the compiled route table and drives the
// matched plan to completion, returning the wire response. A route-not-found
// match produces a 404 response directly (spec §6, "Missing path or missing
// configuration ... 404-class response"); an error-class outcome from the
// executor becomes a problem response whose status httpStatusForCode picks;
// any other outcome returns the output the handlers produced.
func (p *Pipeline) Handle(ctx context.Context, reqCtx RequestContext, req Request) (Response, error) {
	match, err := p.table.Match(req.Method, req.Path)
	if err != nil {
		return problemResponse(http.StatusNotFound, "No route matched this path and method."), nil
	}

	plan, err := p.resolvePlan(match.Plan)
	if err != nil {
		return Response{}, err
	}

	ex := NewExchange()
	ex.SetInput(req)
	ex.SetMetadata(reqCtx)
	ex.SetOutput(Response{Headers: map[string]string{}})
	if len(match.Parameters) > 0 {
		exchange.Add(ex.Attachments(), pathParametersKey, match.Parameters)
	}

	result, err := executor.Run(ctx, plan, ex)
	if err != nil {
		return Response{}, err
	}

	resp, outErr := ex.TakeOutput()
	if outErr != nil {
		resp = Response{}
	}
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}

	if result.Outcome == executor.OutcomeFailed {
		httpStatus := httpStatusForCode(result.FailedStatus.Code())
		problem := problemResponse(httpStatus, result.FailedStatus.Message())
		for k, v := range problem.Headers {
			resp.Headers[k] = v
		}
		resp.Status = problem.Status
		resp.Body = problem.Body
	}

	return resp, nil
}

func (p *Pipeline) resolvePlan(rp router.ExecutionPlan) (executor.Plan[Request, Response, RequestContext], error) {
	requestHandlers, err := p.resolveHandlers(rp.RequestHandlers)
	if err != nil {
		return executor.Plan[Request, Response, RequestContext]{}, err
	}

	terminator, err := p.registry.Lookup(rp.Terminator)
	if err != nil {
		return executor.Plan[Request, Response, RequestContext]{}, err
	}

	responseHandlers, err := p.resolveHandlers(rp.ResponseHandlers)
	if err != nil {
		return executor.Plan[Request, Response, RequestContext]{}, err
	}

	return executor.Plan[Request, Response, RequestContext]{
		RequestHandlers:  requestHandlers,
		Terminator:       terminator,
		ResponseHandlers: responseHandlers,
	}, nil
}

func (p *Pipeline) resolveHandlers(names []string) ([]Handler, error) {
	handlers := make([]Handler, 0, len(names))
	for _, name := range names {
		h, err := p.registry.Lookup(name)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// httpStatusForCode maps an error-class Status code to the wire status
// family spec §7 assigns it (4xx/5xx/504). A handler that wants a more
// specific code (CORS's 403, for instance) sets the response directly and
// returns RequestCompleted instead of an error-class code.
func httpStatusForCode(code status.Code) int {
	switch {
	case code.AnyFlagsSet(status.Timeout):
		return http.StatusGatewayTimeout
	case code.AnyFlagsSet(status.ServerError):
		return http.StatusInternalServerError
	case code.AnyFlagsSet(status.ClientError):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
