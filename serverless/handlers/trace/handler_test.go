package trace_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/trace"
	"github.com/idemio/idem-serverless/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func TestDisabledSkips(t *testing.T) {
	h := trace.New(trace.Config{Enabled: false})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.Disabled))
}

func TestAutogenCorrelationIDWhenAbsent(t *testing.T) {
	h := trace.New(trace.Config{
		Enabled:              true,
		AutogenCorrelationID: true,
		CorrelationHeaderName: "x-correlation-id",
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.OK))

	req, err := ex.Input()
	require.NoError(t, err)
	assert.Regexp(t, uuidPattern, req.Headers["x-correlation-id"])
}

func TestExistingCorrelationIDPreserved(t *testing.T) {
	h := trace.New(trace.Config{
		Enabled:               true,
		AutogenCorrelationID:  true,
		CorrelationHeaderName: "x-correlation-id",
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{"X-Correlation-Id": "abc123"}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	req, err := ex.Input()
	require.NoError(t, err)
	assert.Equal(t, "abc123", req.Headers["x-correlation-id"])
}

func TestAddTraceToResponseCopiesBothHeaders(t *testing.T) {
	h := trace.New(trace.Config{
		Enabled:                true,
		CorrelationHeaderName:  "x-correlation-id",
		TraceabilityHeaderName: "x-traceability-id",
		AddTraceToResponse:     true,
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{
		"x-correlation-id":  "corr-1",
		"x-traceability-id": "trace-1",
	}})
	ex.SetOutput(serverless.Response{Headers: map[string]string{}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	ex.FlushOutputListeners()
	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, "corr-1", resp.Headers["x-correlation-id"])
	assert.Equal(t, "trace-1", resp.Headers["x-traceability-id"])
}

func TestAddTraceToResponseCopiesCorrelationIDOnlyWhenNoTraceabilityID(t *testing.T) {
	h := trace.New(trace.Config{
		Enabled:                true,
		AutogenCorrelationID:   true,
		CorrelationHeaderName:  "x-correlation-id",
		TraceabilityHeaderName: "x-traceability-id",
		AddTraceToResponse:     true,
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{}})
	ex.SetOutput(serverless.Response{Headers: map[string]string{}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	ex.FlushOutputListeners()
	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Regexp(t, uuidPattern, resp.Headers["x-correlation-id"])
	_, hasTraceability := resp.Headers["x-traceability-id"]
	assert.False(t, hasTraceability, "no traceability id was present on the request, so none should appear on the response")
}
