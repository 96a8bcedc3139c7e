// Package apigw holds the small amount of API Gateway proxy plumbing shared by
// the Lambda handlers.
package apigw

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// JSON marshals body into a proxy response with a JSON content type. Extra
// headers override the defaults.
func JSON(status int, body any, headers map[string]string) events.APIGatewayProxyResponse {
	b, err := json.Marshal(body)
	if err != nil {
		return Raw(http.StatusInternalServerError, []byte(`{"error":"response encoding failed"}`), headers)
	}
	return Raw(status, b, headers)
}

// Raw wraps already-encoded JSON.
func Raw(status int, body []byte, headers map[string]string) events.APIGatewayProxyResponse {
	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    h,
		Body:       string(body),
	}
}

// Header looks a request header up case-insensitively, including the
// multi-value map API Gateway fills for REST APIs.
func Header(req events.APIGatewayProxyRequest, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) && v != "" {
			return v
		}
	}
	for k, vs := range req.MultiValueHeaders {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

// Query returns a query string parameter, checking the multi-value map too.
func Query(req events.APIGatewayProxyRequest, name string) (string, bool) {
	if v, ok := req.QueryStringParameters[name]; ok {
		return v, true
	}
	if vs, ok := req.MultiValueQueryStringParameters[name]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}
