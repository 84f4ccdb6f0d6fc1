package header_test

import (
	"context"
	"testing"

	"github.com/idemio/idem-serverless/serverless"
	"github.com/idemio/idem-serverless/serverless/handlers/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestHeadersAppliedImmediately(t *testing.T) {
	h := header.New(header.Config{
		Enabled: true,
		Request: header.ModifyHeaders{
			Update: map[string]string{"x-added": "1"},
			Remove: []string{"x-drop"},
		},
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Path: "/a", Headers: map[string]string{"x-drop": "x"}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	req, err := ex.Input()
	require.NoError(t, err)
	assert.Equal(t, "1", req.Headers["x-added"])
	_, dropped := req.Headers["x-drop"]
	assert.False(t, dropped)
}

func TestResponseHeadersDeferredToListener(t *testing.T) {
	h := header.New(header.Config{
		Enabled: true,
		Response: header.ModifyHeaders{
			Update: map[string]string{"x-resp": "yes"},
		},
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Path: "/a", Headers: map[string]string{}})
	ex.SetOutput(serverless.Response{Headers: map[string]string{}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	ex.FlushOutputListeners()
	resp, err := ex.Output()
	require.NoError(t, err)
	assert.Equal(t, "yes", resp.Headers["x-resp"])
}

func TestPathPrefixOverlayAppliesOnTopOfBase(t *testing.T) {
	h := header.New(header.Config{
		Enabled: true,
		Request: header.ModifyHeaders{Update: map[string]string{"x-base": "base"}},
		PathPrefixHeader: map[string]header.PathOverlay{
			"/admin": {
				Request: header.ModifyHeaders{Update: map[string]string{"x-admin": "yes"}},
			},
		},
	})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Path: "/admin/users", Headers: map[string]string{}})

	_, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)

	req, err := ex.Input()
	require.NoError(t, err)
	assert.Equal(t, "base", req.Headers["x-base"])
	assert.Equal(t, "yes", req.Headers["x-admin"])
}

func TestDisabledHandlerSkips(t *testing.T) {
	h := header.New(header.Config{Enabled: false})
	ex := serverless.NewExchange()
	ex.SetInput(serverless.Request{Headers: map[string]string{}})

	s, err := h.Exec(context.Background(), ex)
	require.NoError(t, err)
	assert.True(t, s.Code() != 0)
}
