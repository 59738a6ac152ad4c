package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/id"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler serves the runtime channel
type Handler struct {
	dispatcher runtime.Dispatcher
	origins    map[string]struct{}
	anyOrigin  bool
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	metrics    *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler. Upgrades carrying an Origin
// header are accepted only when it is listed in allowOrigins ("*" accepts
// any); an absent Origin is a local non-browser client and is accepted.
func NewHandler(dispatcher runtime.Dispatcher, allowOrigins []string, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		dispatcher: dispatcher,
		origins:    make(map[string]struct{}, len(allowOrigins)),
		logger:     logger,
		metrics:    metrics,
	}
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			h.anyOrigin = true
			continue
		}
		if o != "" {
			h.origins[o] = struct{}{}
		}
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.anyOrigin {
		return true
	}
	_, ok := h.origins[origin]
	if !ok {
		h.logger.Warn("rejecting runtime channel origin", zap.String("origin", origin))
	}
	return ok
}

// HandleConnection upgrades the request and serves envelopes until the peer
// disconnects. Replies may be written in any order.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.logger.With(zap.String("conn", id.NewConnectionID().String()))
	log.Debug("runtime channel open")

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(envID string, reply []byte) {
		frame, err := sonic.Marshal(runtime.Envelope{ID: envID, Message: reply})
		if err != nil {
			log.Error("encode envelope", zap.String("id", envID), zap.Error(err))
			return
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			log.Debug("write after disconnect", zap.String("id", envID), zap.Error(err))
			return
		}
		h.metrics.RecordWSMessage("out")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in")

		var env runtime.Envelope
		if err := sonic.Unmarshal(data, &env); err != nil || env.ID == "" {
			log.Warn("dropping frame without envelope id", zap.Error(err))
			continue
		}

		envID := env.ID
		h.dispatcher.Dispatch(ctx, env.Message, func(reply []byte) {
			send(envID, reply)
		})
	}
}
