// Package client talks to the remote inventory API over fasthttp.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/httpcontext"
	appLogger "github.com/fastygo/stockdesk/pkg/logger"
)

// Config holds the remote API client configuration.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxConnsPerHost int
	UserAgent       string
	Breaker         BreakerConfig
}

// BreakerConfig controls when the client stops calling an unhealthy remote.
type BreakerConfig struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns sensible defaults for a local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:5000/api",
		Timeout:         15 * time.Second,
		MaxConnsPerHost: 16,
		UserAgent:       "stockdesk",
		Breaker: BreakerConfig{
			Name:         "inventory-api",
			MaxRequests:  1,
			Interval:     60 * time.Second,
			Timeout:      30 * time.Second,
			FailureRatio: 0.5,
			MinRequests:  5,
		},
	}
}

// ErrCircuitOpen is returned (wrapped) while the breaker rejects calls.
var ErrCircuitOpen = gobreaker.ErrOpenState

// Client implements the auth, product and report gateways.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	adapter *httpcontext.Adapter
	breaker *gobreaker.CircuitBreaker[*reply]
	logger  *zap.Logger
}

type reply struct {
	status int
	body   []byte
}

// statusError marks a non-2xx reply. Only 5xx count against the breaker.
type statusError struct {
	reply *reply
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.reply.status)
}

type call struct {
	method string
	path   string
	token  string
	query  map[string]int
	body   any
	// lenient accepts 2xx bodies that do not decode into out.
	lenient bool
}

// New creates a client for the remote API.
func New(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxConnsPerHost <= 0 {
		cfg.MaxConnsPerHost = def.MaxConnsPerHost
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = def.Breaker
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	bc := cfg.Breaker
	settings := gobreaker.Settings{
		Name:        bc.Name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			var sErr *statusError
			if errors.As(err, &sErr) {
				return sErr.reply.status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		http: &fasthttp.Client{
			Name:            cfg.UserAgent,
			MaxConnsPerHost: cfg.MaxConnsPerHost,
			ReadTimeout:     cfg.Timeout,
			WriteTimeout:    cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		adapter: httpcontext.NewAdapter(cfg.UserAgent),
		breaker: gobreaker.NewCircuitBreaker[*reply](settings),
		logger:  logger,
	}
}

// BreakerState exposes the breaker state for diagnostics.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Health reports the breaker state. An open breaker is unhealthy.
func (c *Client) Health(context.Context) (string, error) {
	state := c.breaker.State()
	detail := "breaker " + state.String()
	if state == gobreaker.StateOpen {
		return detail, ErrCircuitOpen
	}
	return detail, nil
}

// do performs a call and decodes a 2xx body into out (when non-nil).
// Structured rejections come back as *domain.RemoteError, every other
// failure as a TRANSPORT domain error.
func (c *Client) do(ctx context.Context, in call, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "request cancelled", err)
	}

	var payload []byte
	if in.body != nil {
		var err error
		if payload, err = json.Marshal(in.body); err != nil {
			return domain.WrapError(domain.ErrCodeTransport, "encode request", err)
		}
	}

	started := time.Now()
	res, err := c.breaker.Execute(func() (*reply, error) {
		return c.send(ctx, in, payload)
	})
	log := appLogger.WithRequestID(ctx, c.logger).With(
		zap.String("method", in.method),
		zap.String("path", in.path),
		zap.Duration("elapsed", time.Since(started)))

	var sErr *statusError
	switch {
	case errors.As(err, &sErr):
		log.Debug("remote rejected request", zap.Int("status", sErr.reply.status))
		return decodeRejection(sErr.reply)
	case err != nil:
		log.Warn("remote call failed", zap.Error(err))
		return domain.WrapError(domain.ErrCodeTransport, "request could not be completed", err)
	}

	log.Debug("remote call succeeded", zap.Int("status", res.status))
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		if in.lenient {
			log.Debug("ignoring undecodable success body", zap.Error(err))
			return nil
		}
		return domain.WrapError(domain.ErrCodeTransport, "decode response", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, in call, payload []byte) (*reply, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + in.path)
	req.Header.SetMethod(in.method)
	for k, v := range in.query {
		req.URI().QueryArgs().SetUint(k, v)
	}
	c.adapter.Attach(ctx, req)
	httpcontext.SetBearer(req, in.token)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}

	r := &reply{
		status: resp.StatusCode(),
		body:   append([]byte(nil), resp.Body()...),
	}
	if r.status < 200 || r.status > 299 {
		return r, &statusError{reply: r}
	}
	return r, nil
}

func decodeRejection(r *reply) error {
	var rErr domain.RemoteError
	if err := json.Unmarshal(r.body, &rErr); err == nil &&
		(rErr.Message != "" || rErr.Kind != "" || rErr.Status != 0) {
		return &rErr
	}
	return domain.WrapError(domain.ErrCodeTransport,
		fmt.Sprintf("remote returned status %d without a readable body", r.status), nil)
}
