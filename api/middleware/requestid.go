package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/openlearn/lms-api/api/web"
)

const (
	// RequestIDHeader lets a caller or proxy supply its own id, capped so
	// a hostile header cannot bloat every log line.
	RequestIDHeader = "X-Request-Id"
	requestIDMaxLen = 128
)

type reqIDCtxKey int

const reqIDKey reqIDCtxKey = 1

// Generated ids share a random per-process prefix plus a counter, so ids
// stay unique across restarts without coordination.
var (
	reqCounter uint64
	reqPrefix  = newPrefix()
)

func newPrefix() string {
	var buf [5]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "reqid"
	}
	return hex.EncodeToString(buf[:])
}

func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			id := r.Header.Get(RequestIDHeader)
			switch {
			case id == "":
				id = fmt.Sprintf("%s-%d", reqPrefix, atomic.AddUint64(&reqCounter, 1))
			case len(id) > requestIDMaxLen:
				id = id[:requestIDMaxLen]
			}

			return handler(context.WithValue(ctx, reqIDKey, id), w, r)
		}
		return h
	}
	return m
}

// ContextRequestID returns the id stored by RequestID, or "" when the
// middleware did not run.
func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
