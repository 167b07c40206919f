package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/openlearn/lms-api/api/web"
	"github.com/openlearn/lms-api/api/weberr"
)

// Panics recovers handler panics and converts them into errors so the
// error middleware can render a response instead of killing the request.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {

			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = weberr.InternalError(
						fmt.Errorf("PANIC [%v]", rec),
						weberr.WithFields(map[string]interface{}{
							"trace": string(trace),
						}),
					)
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
