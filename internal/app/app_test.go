package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/config"
)

func TestNew_RoutesDocumentRequests(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ADMIN_KEY", "k3y")
	cfg, err := config.Load()
	require.NoError(t, err)
	a := New(cfg, zap.NewNop())

	ctx := context.Background()
	resp, err := a.Router.Handle(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       "/api/game-data",
		Headers:    map[string]string{"X-Admin-Key": "k3y"},
		Body:       `{"data":{"winner":"Z"}}`,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = a.Router.Handle(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/.netlify/functions/game-data"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"winner":"Z"}`, resp.Body)
}

func TestFromEnv_RejectsBadConfig(t *testing.T) {
	t.Setenv("FEED_FORMAT", "xml")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "config")
}
