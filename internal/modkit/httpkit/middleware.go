package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"comicvault/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// CacheMaxAge sets Cache-Control on responses; 0 means no-cache
	CacheMaxAge time.Duration
	// MaxInFlight caps concurrent requests when positive
	MaxInFlight int
}

// CommonStack returns the baseline per scope middleware slice
func CommonStack(opt StackOptions) []func(http.Handler) http.Handler {
	if opt.Timeout <= 0 {
		opt.Timeout = 30 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestContext(),

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{}),

		// cross-origin, read only
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: opt.AllowedOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(opt.Timeout),

		// cache / freshness
		middleware.CacheControl(opt.CacheMaxAge),
	}
	if opt.MaxInFlight > 0 {
		stack = append(stack, middleware.Throttle(opt.MaxInFlight, opt.MaxInFlight*2, 5*time.Second))
	}
	return stack
}
