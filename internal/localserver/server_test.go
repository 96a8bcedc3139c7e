package localserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEngine_ProxiesRequest(t *testing.T) {
	var got events.APIGatewayProxyRequest
	h := func(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		got = req
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusCreated,
			Headers:    map[string]string{"Content-Type": "application/json", "Cache-Control": "no-store"},
			Body:       `{"ok":true}`,
		}, nil
	}
	e := NewEngine(h, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/.netlify/functions/game-data?debug=0", strings.NewReader(`{"action":"auth"}`))
	req.Header.Set("X-Admin-Key", "k")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, `{"ok":true}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.MethodPost, got.HTTPMethod)
	assert.Equal(t, "/.netlify/functions/game-data", got.Path)
	assert.Equal(t, "k", got.Headers["x-admin-key"])
	assert.Equal(t, "0", got.QueryStringParameters["debug"])
	assert.Equal(t, `{"action":"auth"}`, got.Body)
	assert.False(t, got.IsBase64Encoded)
}

func TestEngine_HandlerErrorIs502(t *testing.T) {
	h := func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, assert.AnError
	}
	rec := httptest.NewRecorder()
	NewEngine(h, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lotto-bonus", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestEngine_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	NewEngine(nil, zap.NewNop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestEngine_OversizedBodyIs413(t *testing.T) {
	called := false
	h := func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		called = true
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Body: `{"ok":true}`}, nil
	}
	e := NewEngine(h, zap.NewNop())

	pad := strings.Repeat("x", maxRequestBytes)
	req := httptest.NewRequest(http.MethodPost, "/api/game-data", strings.NewReader(`{"data":{"winner":"new","pad":"`+pad+`"}}`))
	req.Header.Set("X-Admin-Key", "k")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
	assert.False(t, called, "handler must not run on a cut-off body")

	// exactly at the cap still reaches the handler
	req = httptest.NewRequest(http.MethodPost, "/api/game-data", strings.NewReader(strings.Repeat(" ", maxRequestBytes)))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
