package httpcontext

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/stockdesk/pkg/logger"
)

const (
	HeaderRequestID     = "X-Request-ID"
	HeaderAuthorization = "Authorization"
)

// Adapter stamps outgoing fasthttp requests with request metadata.
type Adapter struct {
	userAgent string
}

// NewAdapter constructs an Adapter advertising the given user agent.
func NewAdapter(userAgent string) *Adapter {
	if userAgent == "" {
		userAgent = "stockdesk"
	}
	return &Adapter{userAgent: userAgent}
}

// Attach ensures ctx carries a request ID, writes it and the user agent to
// req and returns the enriched context.
func (a *Adapter) Attach(ctx context.Context, req *fasthttp.Request) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	reqID := appLogger.RequestID(ctx)
	if strings.TrimSpace(reqID) == "" {
		reqID = uuid.NewString()
		ctx = appLogger.ContextWithRequestID(ctx, reqID)
	}
	req.Header.Set(HeaderRequestID, reqID)
	req.Header.SetUserAgent(a.userAgent)
	return ctx
}

// SetBearer attaches the token as a bearer credential. An empty token leaves
// the request anonymous; the remote decides whether that is acceptable.
func SetBearer(req *fasthttp.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set(HeaderAuthorization, "Bearer "+token)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
