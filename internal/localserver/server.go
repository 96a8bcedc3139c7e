// Package localserver runs the Lambda handlers behind a plain HTTP server for
// local development, at the same paths the hosted site uses.
package localserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/api"
)

const maxRequestBytes = 1 << 20

// errRequestTooLarge rejects a body over maxRequestBytes; handlers never see
// a cut-off prefix.
var errRequestTooLarge = errors.New("request body too large")

// NewEngine mounts h at /.netlify/functions/:fn and /api/:fn.
func NewEngine(h api.HandlerFunc, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	proxy := lambdaProxy(h, log)
	r.Any("/.netlify/functions/:fn", proxy)
	r.Any("/api/:fn", proxy)
	return r
}

// lambdaProxy converts the HTTP request into an API Gateway proxy event and
// writes the handler's response back.
func lambdaProxy(h api.HandlerFunc, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := toProxyRequest(c.Request)
		if errors.Is(err, errRequestTooLarge) {
			log.Warn("request body rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp, err := h(c.Request.Context(), req)
		if err != nil {
			log.Error("handler returned error", zap.String("path", req.Path), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "internal handler error"})
			return
		}
		writeProxyResponse(c, resp)
	}
}

func toProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}
	if len(body) > maxRequestBytes {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("%w (over %d bytes)", errRequestTooLarge, maxRequestBytes)
	}

	req := events.APIGatewayProxyRequest{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Headers:                         make(map[string]string, len(r.Header)),
		MultiValueHeaders:               make(map[string][]string, len(r.Header)),
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
	}
	for k, vs := range r.Header {
		req.Headers[strings.ToLower(k)] = strings.Join(vs, ",")
		req.MultiValueHeaders[strings.ToLower(k)] = vs
	}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			req.QueryStringParameters[k] = vs[len(vs)-1]
		}
		req.MultiValueQueryStringParameters[k] = vs
	}
	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}
	return req, nil
}

func writeProxyResponse(c *gin.Context, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			c.Writer.Header().Add(k, v)
		}
	}
	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		if b, err := base64.StdEncoding.DecodeString(resp.Body); err == nil {
			body = b
		}
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)
	_, _ = c.Writer.Write(body)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
