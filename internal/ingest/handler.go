package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/tyler180/bonus-ball-backends/internal/apigw"
	"github.com/tyler180/bonus-ball-backends/internal/draws"
	"github.com/tyler180/bonus-ball-backends/internal/feed"
)

const (
	MinLimit     = 1
	MaxLimit     = 100
	DefaultLimit = 20
)

// Fetcher is the outbound side of the handler; *feed.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, format feed.Format) (string, error)
}

type Options struct {
	URL            string
	Format         feed.Format
	DefaultLimit   int
	Fallback       bool
	CacheMaxAge    time.Duration // real draws
	FallbackMaxAge time.Duration // placeholder draws
}

// Envelope is the success body. Synthetic is set only when placeholder draws
// were served because the feed had none.
type Envelope struct {
	Success   bool           `json:"success"`
	Count     int            `json:"count"`
	Draws     []draws.Record `json:"draws"`
	Synthetic bool           `json:"synthetic,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	fetcher Fetcher
	norm    *draws.Normalizer
	opts    Options
	log     *zap.Logger

	now     func() time.Time
	newRand func() *rand.Rand
}

func NewHandler(f Fetcher, n *draws.Normalizer, opts Options, log *zap.Logger) *Handler {
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.Format == "" {
		opts.Format = feed.FormatCSV
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		fetcher: f,
		norm:    n,
		opts:    opts,
		log:     log,
		now:     time.Now,
		newRand: func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) },
	}
}

// Handle runs one fetch, normalize, fallback, respond cycle. The returned
// error is always nil; failures are encoded in the response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch req.HTTPMethod {
	case "", http.MethodGet, http.MethodHead:
	default:
		return failure(http.StatusMethodNotAllowed, "method not allowed"), nil
	}

	raw, _ := apigw.Query(req, "limit")
	limit := ParseLimit(raw, h.opts.DefaultLimit)
	log := h.log.With(zap.Int("limit", limit), zap.String("feed_format", string(h.opts.Format)))

	body, err := h.fetcher.Fetch(ctx, h.opts.URL, h.opts.Format)
	if err != nil {
		var se *feed.StatusError
		if errors.As(err, &se) {
			log.Warn("feed returned non-success status", zap.Int("status", se.StatusCode), zap.String("body", se.Body))
			return failure(http.StatusBadGateway, fmt.Sprintf("feed fetch failed (%d)", se.StatusCode)), nil
		}
		log.Error("feed fetch failed", zap.Error(err))
		return failure(http.StatusInternalServerError, err.Error()), nil
	}
	if strings.TrimSpace(body) == "" {
		log.Warn("feed body empty")
		return failure(http.StatusBadGateway, "empty feed"), nil
	}

	records, err := h.normalize(body, limit)
	if err != nil {
		log.Error("feed rejected", zap.Error(err))
		return failure(http.StatusInternalServerError, err.Error()), nil
	}

	env := Envelope{Success: true, Draws: records}
	maxAge := h.opts.CacheMaxAge
	if len(records) == 0 && h.opts.Fallback {
		env.Draws = draws.Generate(limit, h.norm.Target, h.now(), h.newRand())
		env.Synthetic = true
		maxAge = h.opts.FallbackMaxAge
		log.Warn("fallback draws served", zap.Int("count", len(env.Draws)))
	} else {
		log.Info("feed fetched", zap.Int("count", len(records)), zap.Int("bytes", len(body)))
	}
	env.Count = len(env.Draws)

	resp := apigw.JSON(http.StatusOK, env, map[string]string{"Cache-Control": cacheControl(maxAge)})
	if req.HTTPMethod == http.MethodHead {
		resp.Body = ""
	}
	return resp, nil
}

func (h *Handler) normalize(body string, limit int) ([]draws.Record, error) {
	switch h.opts.Format {
	case feed.FormatJSON:
		return h.norm.FromLooseJSON([]byte(body), limit)
	case feed.FormatHTML:
		return h.norm.FromHTMLTable(body, limit)
	default:
		return h.norm.FromTabularText(strings.TrimSpace(body), limit)
	}
}

// ParseLimit reads the leading integer of raw the way a lenient query parser
// would ("15abc" is 15) and clamps it to [MinLimit, MaxLimit]. Missing or
// unreadable input yields def, itself clamped.
func ParseLimit(raw string, def int) int {
	n, ok := leadingInt(raw)
	if !ok {
		n = def
	}
	return min(max(n, MinLimit), MaxLimit)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// overflow: far outside the clamp range either way
		if s[0] == '-' {
			return MinLimit, true
		}
		return MaxLimit, true
	}
	return n, true
}

func cacheControl(maxAge time.Duration) string {
	if maxAge <= 0 {
		return "no-store"
	}
	return fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
}

func failure(status int, msg string) events.APIGatewayProxyResponse {
	return apigw.JSON(status, errorEnvelope{Success: false, Error: msg}, nil)
}
