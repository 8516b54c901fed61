package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	feedhandler "github.com/zhouzirui/pairrelay/internal/handler/feed"
	"github.com/zhouzirui/pairrelay/internal/handler/health"
	"github.com/zhouzirui/pairrelay/internal/handler/messages"
	pairinghandler "github.com/zhouzirui/pairrelay/internal/handler/pairing"
	middlewarePkg "github.com/zhouzirui/pairrelay/internal/middleware"
	feedService "github.com/zhouzirui/pairrelay/internal/service/feed"
	ingestService "github.com/zhouzirui/pairrelay/internal/service/ingest"
	pairingService "github.com/zhouzirui/pairrelay/internal/service/pairing"
	"github.com/zhouzirui/pairrelay/pkg/utils"
)

// Options tune the HTTP boundary.
type Options struct {
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter wires HTTP routes to core services. hub may be nil, in which
// case the live feed is not served.
func NewRouter(pairSvc *pairingService.Service, ingestSvc *ingestService.Service, hub *feedService.Hub, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	health.New().RegisterRoutes(r)
	pairinghandler.New(pairSvc).RegisterRoutes(r)
	messages.New(ingestSvc, opts.MaxBodyBytes).RegisterRoutes(r)

	if hub != nil {
		feedhandler.NewWebSocketHandler(ingestSvc, hub).RegisterRoutes(r)
	}

	return r
}
