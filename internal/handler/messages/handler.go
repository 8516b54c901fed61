package messages

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
	"github.com/zhouzirui/pairrelay/internal/service/ingest"
	"github.com/zhouzirui/pairrelay/pkg/utils"
)

// DefaultMaxBodyBytes caps a submission body when no limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Handler 消息接口的HTTP处理器
type Handler struct {
	ingestSvc    *ingest.Service
	maxBodyBytes int64
}

// New 创建消息处理器
func New(ingestSvc *ingest.Service, maxBodyBytes int64) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		ingestSvc:    ingestSvc,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes 注册消息相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleSubmit)
	r.Get("/messages", h.handleList)
}

// handleSubmit 校验令牌并保存消息
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.ingestSvc.Ingest(r.Context(), raw); err != nil {
		status, message := ErrorStatus(err)
		utils.RespondError(w, status, message)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleList 返回令牌名下的全部消息
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	token := pairing.Token(r.URL.Query().Get("uuid"))
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "uuid query parameter is required")
		return
	}

	items, err := h.ingestSvc.Messages(r.Context(), token)
	if err != nil {
		status, message := ErrorStatus(err)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, items)
}

// ErrorStatus maps an ingest error to a status code and a client-safe
// message. Token store read failures are reported as 500, not 401.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ingest.ErrMalformedInput):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, ingest.ErrTokenLookup):
		return http.StatusInternalServerError, "authorization unavailable"
	case errors.Is(err, ingest.ErrUnauthorized):
		return http.StatusUnauthorized, "unknown token"
	case errors.Is(err, ingest.ErrStorageFailure):
		return http.StatusInternalServerError, "message could not be stored"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
