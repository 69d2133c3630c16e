package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/chat"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// sseSink adapts the response writer into a chat.StreamSink. Headers are
// committed on the first write so a relay error that happens before any
// frame can still go out as a plain JSON error response.
type sseSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *sseSink) Write(p []byte) (int, error) {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.w.Header().Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	return s.w.Write(p)
}

func (s *sseSink) Flush() {
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

// ChatRelay streams assistant replies over SSE. The same handler serves the
// authenticated portal widget and, behind the rate limiter, the public
// marketing widget.
func ChatRelay(svc *chat.Service, limiter *chat.RateLimiter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "chat relay unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if limiter != nil {
			decision := limiter.Check(chat.ClientKey(r))
			if !decision.Allowed {
				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				// The public widget reads this shape directly; it is not the
				// standard error envelope on purpose.
				if err := json.NewEncoder(w).Encode(map[string]any{
					"error":      "rate limit exceeded",
					"retryAfter": retryAfter,
				}); err != nil {
					logg.Error(r.Context(), "failed to encode rate limit response", err)
				}
				return
			}
		}

		var body chat.Request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			err := pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported by connection")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sink := &sseSink{w: w, flusher: flusher}
		if err := svc.Relay(r.Context(), body, sink); err != nil {
			if sink.started {
				// Headers already went out as an event stream; the relay
				// logged the failure and the stream just ends.
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
	}
}
