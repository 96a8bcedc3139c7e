// Package api dispatches API Gateway proxy events to the two endpoints so one
// function can serve both.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tyler180/bonus-ball-backends/internal/apigw"
)

const (
	PathLottoBonus = "/lotto-bonus"
	PathGameData   = "/game-data"
)

// HandlerFunc is the Lambda proxy handler shape shared by both endpoints.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type Router struct {
	LottoBonus HandlerFunc
	GameData   HandlerFunc
}

// Handle matches on path suffix, so "/.netlify/functions/game-data",
// "/api/game-data" and "/prod/game-data/" all reach the document handler.
func (r *Router) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := strings.TrimRight(req.Path, "/")
	switch {
	case strings.HasSuffix(path, PathLottoBonus) && r.LottoBonus != nil:
		return r.LottoBonus(ctx, req)
	case strings.HasSuffix(path, PathGameData) && r.GameData != nil:
		return r.GameData(ctx, req)
	}
	return apigw.JSON(http.StatusNotFound, map[string]string{"error": "not found"}, nil), nil
}
