package sse

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/sequence"
)

// Puller is the pull contract Serve consumes. *sequence.Sequence satisfies it.
type Puller[T any] interface {
	Next(ctx context.Context) (T, bool, error)
	Close() error
}

type pulled[T any] struct {
	item T
	ok   bool
	err  error
}

// Serve streams seq to the client until the sequence completes, fails or the
// client disconnects. The sequence is always closed on return. The returned
// error is the sequence failure, the encoding failure, or the request context
// error on disconnect.
func Serve[T any](c *gin.Context, seq Puller[T], opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.clientID == "" {
		o.clientID = uuid.NewString()
	}
	log := o.log
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("sse").WithFields(logger.Fields("client_id", o.clientID))

	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanStreamServe,
		trace.WithAttributes(attribute.String("client.id", o.clientID)))
	defer span.End()

	w := c.Writer
	// Long-lived streams must not be cut by the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not disable write deadline", logger.Fields("error", err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	connected, _ := json.Marshal(ConnectedEvent{ClientID: o.clientID})
	if err := writeEvent(w, EventTypeConnected, connected); err != nil {
		_ = seq.Close()
		return err
	}
	w.Flush()
	log.Debug("client connected", logger.Fields("remote_addr", c.Request.RemoteAddr))

	pullCtx, cancel := context.WithCancel(ctx)
	results := make(chan pulled[T])
	go func() {
		defer close(results)
		for {
			item, ok, err := seq.Next(pullCtx)
			select {
			case results <- pulled[T]{item: item, ok: ok, err: err}:
			case <-pullCtx.Done():
				return
			}
			if !ok || err != nil {
				return
			}
		}
	}()
	defer func() {
		cancel()
		_ = seq.Close()
		for range results {
		}
	}()

	var keepAlive <-chan time.Time
	if o.keepAlive > 0 {
		ticker := time.NewTicker(o.keepAlive)
		defer ticker.Stop()
		keepAlive = ticker.C
	}

	var sent int64
	for {
		select {
		case <-ctx.Done():
			log.Debug("client disconnected", logger.Fields("reason", ctx.Err().Error(), "sent", sent))
			return ctx.Err()

		case r, open := <-results:
			if !open {
				return ctx.Err()
			}
			if r.err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fail(ctx, w, log, r.err)
			}
			if !r.ok {
				end, _ := json.Marshal(EndEvent{Yielded: sent})
				_ = writeEvent(w, EventTypeEnd, end)
				w.Flush()
				log.Debug("stream completed", logger.Fields("sent", sent))
				return nil
			}
			data, err := o.encoder(r.item)
			if err != nil {
				return fail(ctx, w, log, errors.TransformFailed(err))
			}
			if err := writeEvent(w, o.event, data); err != nil {
				log.Debug("write failed", logger.ErrorFields("write", err))
				return err
			}
			w.Flush()
			sent++

		case <-keepAlive:
			if err := writeComment(w, EventTypeKeepAlive); err != nil {
				return err
			}
			w.Flush()
		}
	}
}

func fail(ctx context.Context, w gin.ResponseWriter, log *logger.Logger, err error) error {
	data, _ := json.Marshal(errors.ResponseFor(err))
	_ = writeEvent(w, EventTypeError, data)
	w.Flush()
	observability.SetSpanError(ctx, err)
	log.Debug("stream failed", logger.Fields("error_code", string(errors.CodeOf(err))))
	return err
}

// Handler returns a gin handler that opens a sequence per request and serves
// it. Errors from open are answered with a JSON error body.
func Handler[T any](open func(*gin.Context) (*sequence.Sequence[T], error), opts ...Option) gin.HandlerFunc {
	return func(c *gin.Context) {
		seq, err := open(c)
		if err != nil {
			status := http.StatusInternalServerError
			if appErr, ok := errors.AsAppError(err); ok && appErr.HTTPStatus != 0 {
				status = appErr.HTTPStatus
			}
			c.AbortWithStatusJSON(status, errors.ResponseFor(err))
			return
		}
		if err := Serve[T](c, seq, opts...); err != nil {
			_ = c.Error(err)
		}
	}
}
