package pairing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	pairingservice "github.com/zhouzirui/pairrelay/internal/service/pairing"
	"github.com/zhouzirui/pairrelay/pkg/utils"
)

// Handler 配对接口的HTTP处理器
type Handler struct {
	pairSvc *pairingservice.Service
}

// New 创建配对处理器
func New(pairSvc *pairingservice.Service) *Handler {
	return &Handler{pairSvc: pairSvc}
}

// RegisterRoutes 注册配对相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/pair", h.handlePair)
}

// handlePair 签发新令牌，响应体为令牌本身
func (h *Handler) handlePair(w http.ResponseWriter, r *http.Request) {
	token, err := h.pairSvc.Pair(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "pairing unavailable")
		return
	}

	utils.RespondText(w, http.StatusOK, token.String())
}
