package feed

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/pairrelay/internal/handler/messages"
	"github.com/zhouzirui/pairrelay/internal/model/pairing"
	feedservice "github.com/zhouzirui/pairrelay/internal/service/feed"
	"github.com/zhouzirui/pairrelay/internal/service/ingest"
	"github.com/zhouzirui/pairrelay/pkg/utils"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	maxReadSize  = 512
)

// WebSocketHandler 将已保存的消息实时推送给持有同一令牌的客户端
type WebSocketHandler struct {
	ingestSvc *ingest.Service
	hub       *feedservice.Hub
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(ingestSvc *ingest.Service, hub *feedservice.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		ingestSvc: ingestSvc,
		hub:       hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: slog.Default().With("component", "feed"),
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/feed", h.handleWebSocket)
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := pairing.Token(r.URL.Query().Get("uuid"))
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "uuid query parameter is required")
		return
	}

	if err := h.ingestSvc.Authorize(r.Context(), token); err != nil {
		status, message := messages.ErrorStatus(err)
		utils.RespondError(w, status, message)
		return
	}

	// Subscribe before the handshake completes so nothing stored after the
	// client sees the upgrade response is missed.
	updates, cancel := h.hub.Subscribe(token)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("feed opened", "token", token.Redacted())
	defer h.logger.Info("feed closed", "token", token.Redacted())

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case msg, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("feed write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so control messages are processed and
// closes done once the peer goes away.
func (h *WebSocketHandler) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxReadSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("feed read ended", "error", err)
			}
			return
		}
	}
}
