package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SSE event names
const (
	EventConnected = "connected"
	EventSession   = "session"
	EventHeartbeat = "heartbeat"
)

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string
	Data  string
	ID    string
}

// SessionSubscriber hands out per-key session state subscriptions
type SessionSubscriber interface {
	Subscribe(key string) (<-chan session.State, func())
}

// StreamRecorder counts open event streams
type StreamRecorder interface {
	StreamOpened(ctx context.Context)
	StreamClosed(ctx context.Context)
}

// SessionEventsHandler streams the header view model of a visitor's
// session as server-sent events
type SessionEventsHandler struct {
	BaseHandler
	hub        SessionSubscriber
	sessions   SessionManager
	logger     *zap.Logger
	recorder   StreamRecorder
	heartbeat  time.Duration
	maxStreams int
	active     atomic.Int64
	ctx        context.Context
	cancel     context.CancelFunc
}

// SessionEventsOption configures a SessionEventsHandler
type SessionEventsOption func(*SessionEventsHandler)

// WithEventsLogger sets the logger
func WithEventsLogger(logger *zap.Logger) SessionEventsOption {
	return func(h *SessionEventsHandler) {
		h.logger = logger
	}
}

// WithHeartbeat sets the heartbeat interval
func WithHeartbeat(interval time.Duration) SessionEventsOption {
	return func(h *SessionEventsHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithMaxStreams caps concurrent streams. Zero means unlimited.
func WithMaxStreams(max int) SessionEventsOption {
	return func(h *SessionEventsHandler) {
		h.maxStreams = max
	}
}

// WithStreamRecorder attaches a metrics recorder
func WithStreamRecorder(r StreamRecorder) SessionEventsOption {
	return func(h *SessionEventsHandler) {
		h.recorder = r
	}
}

// NewSessionEventsHandler creates a new SessionEventsHandler
func NewSessionEventsHandler(hub SessionSubscriber, sessions SessionManager, opts ...SessionEventsOption) *SessionEventsHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &SessionEventsHandler{
		hub:        hub,
		sessions:   sessions,
		logger:     zap.NewNop(),
		heartbeat:  30 * time.Second,
		maxStreams: 10000,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stop disconnects every stream
func (h *SessionEventsHandler) Stop() {
	h.cancel()
}

// ActiveStreams returns the number of connected streams
func (h *SessionEventsHandler) ActiveStreams() int {
	return int(h.active.Load())
}

// Stream subscribes to the caller's session key and writes one "session"
// event per state. The first event is the last known state (loading when
// none is known) and is followed by the state resolved from this request.
func (h *SessionEventsHandler) Stream(c *gin.Context) {
	key := middleware.GetSessionKey(c)
	if key == "" {
		h.BadRequest(c, "Missing session key")
		return
	}

	// reserve the slot before checking so concurrent connects cannot overshoot
	n := h.active.Add(1)
	defer h.active.Add(-1)
	if h.maxStreams > 0 && n > int64(h.maxStreams) {
		h.ServiceUnavailable(c, "Maximum number of session streams reached")
		return
	}

	reqCtx := c.Request.Context()
	if h.recorder != nil {
		h.recorder.StreamOpened(reqCtx)
		defer h.recorder.StreamClosed(context.WithoutCancel(reqCtx))
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	states, unsubscribe := h.hub.Subscribe(key)
	defer unsubscribe()

	h.logger.Debug("Session stream connected", zap.String("session_key", key))

	h.sendEvent(c.Writer, SSEMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
	})
	c.Writer.Flush()

	if h.sessions != nil {
		h.sessions.Refresh(reqCtx, key, middleware.AccessToken(c))
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Debug("Session stream disconnected", zap.String("session_key", key))
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.sendEvent(c.Writer, SSEMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case state, ok := <-states:
			if !ok {
				return
			}
			data, err := json.Marshal(toSessionResponse(state))
			if err != nil {
				h.logger.Error("Failed to marshal session event", zap.Error(err))
				continue
			}
			seq++
			h.sendEvent(c.Writer, SSEMessage{
				Event: EventSession,
				Data:  string(data),
				ID:    strconv.FormatUint(seq, 10),
			})
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *SessionEventsHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
