package proxy_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/proxy"
	"github.com/idemio/idem-serverless/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	payload []byte
	err     error
}

func (f *fakeInvoker) Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	f.payload = payload
	return f.payload, f.err
}

func newFakeResponse(t *testing.T, resp serverless.Response) []byte {
	t.Helper()
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return b
}

func TestDisabledSkips(t *testing.T) {
	h := proxy.New(proxy.Config{Enabled: false}, nil)
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.Disabled))
}

func TestMissingPathRejected(t *testing.T) {
	h := proxy.New(proxy.Config{Enabled: true}, &fakeInvoker{})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET"})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.ClientError))
}

func TestNoFunctionForPathRejected(t *testing.T) {
	h := proxy.New(proxy.Config{Enabled: true, Functions: map[string]string{}}, &fakeInvoker{})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET", Path: "/orders"})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.ClientError))
}

func TestSuccessfulInvokeCompletesWithDownstreamResponse(t *testing.T) {
	wantResp := serverless.Response{Status: 201, Headers: map[string]string{"x-from": "downstream"}, Body: []byte(`{"ok":true}`)}

	fake := &capturingInvoker{response: newFakeResponse(t, wantResp)}

	h := proxy.New(proxy.Config{Enabled: true, Functions: map[string]string{"/orders@GET": "orders-fn"}}, fake)
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET", Path: "/orders"})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))
	assert.Equal(t, "orders-fn", fake.calledFunction)

	out, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, 201, out.Status)
	assert.Equal(t, "downstream", out.Headers["x-from"])
}

func TestInvokerErrorIsServerError(t *testing.T) {
	fake := &capturingInvoker{err: assertErr{}}
	h := proxy.New(proxy.Config{Enabled: true, Functions: map[string]string{"/orders@GET": "orders-fn"}}, fake)
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET", Path: "/orders"})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.ServerError))
}

type capturingInvoker struct {
	calledFunction string
	response       []byte
	err            error
}

func (c *capturingInvoker) Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	c.calledFunction = functionName
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

type assertErr struct{}

func (assertErr) Error() string { return "invoke failed" }
