package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/api/weberr"
	"github.com/openlearn/lms-api/rate"
)

// RateLimit applies a per-client token bucket keyed by remote host.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				err := errors.New("too many requests from " + host)
				return weberr.NewError(err, "too many requests", http.StatusTooManyRequests)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
