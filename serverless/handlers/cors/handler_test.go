package cors_test

import (
	"context"
	"testing"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/cors"
	"github.com/idemio/idem-serverless/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreflightAllowedOriginShortCircuits(t *testing.T) {
	h := cors.New(cors.Config{Enabled: true, AllowedOrigins: []string{"http://ok.example"}, AllowedMethods: []string{"GET", "POST"}})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "OPTIONS", Headers: map[string]string{"Origin": "http://ok.example"}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))

	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, "http://ok.example", resp.Headers["Access-Control-Allow-Origin"])
	assert.Contains(t, resp.Headers["Access-Control-Allow-Methods"], "GET")
}

func TestPreflightDisallowedOriginReturns403(t *testing.T) {
	h := cors.New(cors.Config{Enabled: true, AllowedOrigins: []string{"http://ok.example"}})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "OPTIONS", Headers: map[string]string{"Origin": "http://evil.example"}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.RequestCompleted))

	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, 403, resp.Status)
}

func TestNonPreflightAllowedOriginDecoratesResponseLater(t *testing.T) {
	h := cors.New(cors.Config{Enabled: true, AllowedOrigins: []string{"http://ok.example"}})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET", Headers: map[string]string{"Origin": "http://ok.example"}})
	ex.SetOutput(serverless.Response{Headers: map[string]string{}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.OK))

	ex.FlushOutputListeners()
	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, "http://ok.example", resp.Headers["Access-Control-Allow-Origin"])
}

func TestNoOriginHeaderIsNoop(t *testing.T) {
	h := cors.New(cors.Config{Enabled: true})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Method: "GET", Headers: map[string]string{}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code().AnyFlagsSet(status.OK))
}
