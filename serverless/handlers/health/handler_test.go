package health_test

import (
	"context"
	"testing"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/health"
	"github.com/idemio/idem-serverless/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoker struct {
	err error
}

func (f fakeInvoker) Invoke(ctx context.Context, functionName string, payload []byte) ([]byte, error) {
	return nil, f.err
}

func TestDisabledSkips(t *testing.T) {
	h := health.New(health.Config{Enabled: false}, nil)
	ex := serverless.NewExchange()

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.Disabled))
}

func TestDefaultHealthCheckReturnsOK(t *testing.T) {
	h := health.New(health.Config{Enabled: true}, nil)
	ex := serverless.NewExchange()

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))

	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "OK", string(resp.Body))
}

func TestDownstreamFailureReturnsErrorBody(t *testing.T) {
	h := health.New(health.Config{Enabled: true, DownstreamEnabled: true, DownstreamFunction: "health-fn"}, fakeInvoker{err: assertErr{}})
	ex := serverless.NewExchange()

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))

	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, 503, resp.Status)
	assert.Equal(t, "ERROR", string(resp.Body))
}

func TestDownstreamSuccessReturnsOKBody(t *testing.T) {
	h := health.New(health.Config{Enabled: true, DownstreamEnabled: true, DownstreamFunction: "health-fn"}, fakeInvoker{})
	ex := serverless.NewExchange()

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))

	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "OK", string(resp.Body))
}

type assertErr struct{}

func (assertErr) Error() string { return "downstream unavailable" }
