package serverless_test

import (
	"context"
	"testing"

	"github.com/idemio/idem-serverless/config"
	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/cors"
	"github.com/idemio/idem-serverless/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoFactory(configDir string) (serverless.Handler, error) {
	return serverless.HandlerFunc(func(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
		req, err := ex.Input()
		if err != nil {
			return status.ServerErr("no request"), nil
		}
		ex.SetOutput(serverless.Response{Status: 200, Headers: map[string]string{}, Body: []byte(req.Path)})
		return status.Completed(), nil
	}), nil
}

func markerFactory(configDir string) (serverless.Handler, error) {
	return serverless.HandlerFunc(func(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
		req, err := ex.InputMut()
		if err != nil {
			return status.ServerErr("no request"), nil
		}
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["x-marker"] = "seen"
		return status.Ok(), nil
	}), nil
}

func rejectFactory(configDir string) (serverless.Handler, error) {
	return serverless.HandlerFunc(func(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
		return status.ClientErr("rejected by policy"), nil
	}), nil
}

func decorateOutputFactory(configDir string) (serverless.Handler, error) {
	return serverless.HandlerFunc(func(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
		resp, err := ex.OutputMut()
		if err != nil {
			return status.Ok(), nil
		}
		if resp.Headers == nil {
			resp.Headers = map[string]string{}
		}
		resp.Headers["x-decorated"] = "yes"
		return status.Ok(), nil
	}), nil
}

const flowConfig = `{
	"handlers": ["marker", "echo", "decorate"],
	"chains": {},
	"paths": {
		"/pets/{id}": {
			"method": "GET",
			"exec": ["marker", "echo"]
		}
	}
}`

func buildPipeline(t *testing.T, flow string, responseHandlers map[string]bool) *serverless.Pipeline {
	t.Helper()
	cfg, err := config.ParseExecutionFlowConfig(flow)
	require.NoError(t, err)

	factories := serverless.NewFactoryRegistry()
	factories.Register("marker", markerFactory)
	factories.Register("echo", echoFactory)
	factories.Register("reject", rejectFactory)
	factories.Register("decorate", decorateOutputFactory)

	p, err := serverless.NewPipeline(cfg, factories, "./testdata", responseHandlers)
	require.NoError(t, err)
	return p
}

func TestPipelineRoutesToTerminator(t *testing.T) {
	p := buildPipeline(t, flowConfig, nil)

	resp, err := p.Handle(context.Background(), serverless.RequestContext{RequestID: "r1"}, serverless.Request{
		Method: "GET",
		Path:   "/pets/42",
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "/pets/42", string(resp.Body))
}

func TestPipelineUnknownRouteReturns404(t *testing.T) {
	p := buildPipeline(t, flowConfig, nil)

	resp, err := p.Handle(context.Background(), serverless.RequestContext{}, serverless.Request{
		Method: "GET",
		Path:   "/unknown",
	})
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Status)
}

func TestPipelineErrorFunnelStillRunsResponsePhase(t *testing.T) {
	flow := `{
		"handlers": ["reject", "echo", "decorate"],
		"chains": {},
		"paths": {
			"/blocked": {"method": "GET", "exec": ["reject", "decorate", "echo"]}
		}
	}`
	p := buildPipeline(t, flow, map[string]bool{"decorate": true})

	resp, err := p.Handle(context.Background(), serverless.RequestContext{}, serverless.Request{
		Method: "GET",
		Path:   "/blocked",
	})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.Status)
	assert.Contains(t, string(resp.Body), "rejected by policy")
	assert.Equal(t, "application/problem+json", resp.Headers["Content-Type"])
	assert.Equal(t, "yes", resp.Headers["x-decorated"])
}

func TestPipelinePathParametersAreAccessible(t *testing.T) {
	var captured map[string]any
	factories := serverless.NewFactoryRegistry()
	factories.Register("capture", func(configDir string) (serverless.Handler, error) {
		return serverless.HandlerFunc(func(ctx context.Context, ex *serverless.Exchange) (status.Status, error) {
			captured, _ = serverless.PathParameters(ex)
			ex.SetOutput(serverless.Response{Status: 200, Headers: map[string]string{}})
			return status.Completed(), nil
		}), nil
	})

	flow := `{
		"handlers": ["capture"],
		"chains": {},
		"paths": {
			"/pets/{id}": {"method": "GET", "exec": ["capture"]}
		}
	}`
	cfg, err := config.ParseExecutionFlowConfig(flow)
	require.NoError(t, err)
	p, err := serverless.NewPipeline(cfg, factories, "./testdata", nil)
	require.NoError(t, err)

	_, err = p.Handle(context.Background(), serverless.RequestContext{}, serverless.Request{Method: "GET", Path: "/pets/7"})
	require.NoError(t, err)
	assert.Equal(t, "7", captured["id"])
}

func TestPipelineCorsDisallowedOriginPreflightReturns403(t *testing.T) {
	factories := serverless.NewFactoryRegistry()
	factories.Register("cors", func(configDir string) (serverless.Handler, error) {
		return cors.New(cors.Config{Enabled: true, AllowedOrigins: []string{"http://ok.example"}}), nil
	})
	factories.Register("echo", echoFactory)

	flow := `{
		"handlers": ["cors", "echo"],
		"chains": {},
		"paths": {
			"/widgets": {"method": "OPTIONS", "exec": ["cors", "echo"]}
		}
	}`
	cfg, err := config.ParseExecutionFlowConfig(flow)
	require.NoError(t, err)
	p, err := serverless.NewPipeline(cfg, factories, "./testdata", nil)
	require.NoError(t, err)

	resp, err := p.Handle(context.Background(), serverless.RequestContext{}, serverless.Request{
		Method:  "OPTIONS",
		Path:    "/widgets",
		Headers: map[string]string{"Origin": "http://evil.example"},
	})
	require.NoError(t, err)
	assert.Equal(t, 403, resp.Status, "disallowed preflight origin must surface as 403, not the generic 400 client-error mapping")
}
