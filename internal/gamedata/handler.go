// Package gamedata serves the single shared game document: public reads,
// key-gated wholesale writes.
package gamedata

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/apigw"
	"github.com/tyler180/bonus-ball-backends/internal/auth"
	"github.com/tyler180/bonus-ball-backends/internal/store"
)

// Document is the stored game state. Its contents are owned by the client.
type Document = json.RawMessage

// DefaultDocument is served when nothing has been written yet.
var DefaultDocument = Document(`{"numbers":{},"winner":null,"nextDrawDate":null}`)

// ClientSource yields the store client; *store.Resolver satisfies it.
type ClientSource interface {
	Client(ctx context.Context) (store.Client, error)
	Config() store.Config
}

type Handler struct {
	stores ClientSource
	gate   *auth.Gate
	key    string
	log    *zap.Logger
}

func NewHandler(stores ClientSource, gate *auth.Gate, key string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{stores: stores, gate: gate, key: key, log: log}
}

var noStore = map[string]string{"Cache-Control": "no-store"}

type debugBody struct {
	HasSiteID bool   `json:"hasSiteId"`
	HasToken  bool   `json:"hasToken"`
	UseManual bool   `json:"useManual"`
	Backend   string `json:"backend"`
}

type notConfiguredBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	HasSiteID bool   `json:"hasSiteId"`
	HasToken  bool   `json:"hasToken"`
	UseManual bool   `json:"useManual"`
}

type unavailableBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// request is the POST body. Fields stay raw so that a non-string action or a
// falsy data value does not fail decoding.
type request struct {
	Action json.RawMessage `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// Handle never returns a Go error; every outcome is an HTTP response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// Diagnostics come first and never touch the store.
	if v, _ := apigw.Query(req, "debug"); v == "1" {
		cfg := h.stores.Config()
		return reply(http.StatusOK, debugBody{
			HasSiteID: cfg.SiteID != "",
			HasToken:  cfg.Token != "",
			UseManual: cfg.Mode() == store.ModeManual,
			Backend:   backendName(cfg),
		}), nil
	}

	switch req.HTTPMethod {
	case http.MethodGet:
		return h.get(ctx), nil
	case http.MethodPost:
		return h.post(ctx, req), nil
	default:
		return reply(http.StatusMethodNotAllowed, "Method Not Allowed"), nil
	}
}

func (h *Handler) get(ctx context.Context) events.APIGatewayProxyResponse {
	cl, err := h.stores.Client(ctx)
	if err != nil {
		return h.storeFailure("resolve", err)
	}
	doc, ok, err := cl.GetJSON(ctx, h.key)
	if err != nil {
		return h.storeFailure("get", err)
	}
	if !ok {
		doc = DefaultDocument
	}
	return apigw.Raw(http.StatusOK, doc, noStore)
}

func (h *Handler) post(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	body := decodeBody(req)
	supplied := apigw.Header(req, auth.HeaderAdminKey)

	if actionOf(body) == auth.ActionAuth {
		if err := h.gate.Check(supplied, auth.ActionAuth); err != nil {
			h.log.Info("admin key probe rejected", zap.Error(err))
			return reply(http.StatusUnauthorized, "unauthorised")
		}
		return reply(http.StatusOK, "ok")
	}

	if err := h.gate.Check(supplied, ""); err != nil {
		h.log.Warn("unauthorised write rejected", zap.Error(err))
		return reply(http.StatusUnauthorized, "unauthorised")
	}

	doc := Document(`{}`)
	if !falsy(body.Data) {
		doc = body.Data
	}

	cl, err := h.stores.Client(ctx)
	if err != nil {
		return h.storeFailure("resolve", err)
	}
	if err := cl.PutJSON(ctx, h.key, doc); err != nil {
		return h.storeFailure("put", err)
	}
	h.log.Info("document written", zap.String("key", h.key), zap.Int("bytes", len(doc)))
	return reply(http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) storeFailure(op string, err error) events.APIGatewayProxyResponse {
	if errors.Is(err, store.ErrNotConfigured) {
		cfg := h.stores.Config()
		h.log.Error("store not configured", zap.String("op", op), zap.String("backend", backendName(cfg)), zap.Error(err))
		return reply(http.StatusInternalServerError, notConfiguredBody{
			Error:     "store_not_configured",
			Message:   err.Error(),
			HasSiteID: cfg.SiteID != "",
			HasToken:  cfg.Token != "",
			UseManual: cfg.Mode() == store.ModeManual,
		})
	}
	h.log.Error("store unavailable", zap.String("op", op), zap.Error(err))
	return reply(http.StatusInternalServerError, unavailableBody{Error: "store_unavailable", Message: err.Error()})
}

// decodeBody reads the POST body leniently: anything that is not a JSON
// object is treated as {}.
func decodeBody(req events.APIGatewayProxyRequest) request {
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		b, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return request{}
		}
		raw = b
	}
	var r request
	if err := json.Unmarshal(raw, &r); err != nil {
		return request{}
	}
	return r
}

func actionOf(r request) string {
	var s string
	if err := json.Unmarshal(r.Action, &s); err != nil {
		return ""
	}
	return s
}

// falsy reports whether v is absent or one of null, false, 0 or "".
func falsy(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return true
	}
	var x any
	if err := json.Unmarshal(v, &x); err != nil {
		return true
	}
	switch t := x.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	}
	return false
}

func backendName(cfg store.Config) string {
	if cfg.Backend == "" {
		return store.BackendDynamoDB
	}
	return cfg.Backend
}

func reply(status int, body any) events.APIGatewayProxyResponse {
	return apigw.JSON(status, body, noStore)
}
