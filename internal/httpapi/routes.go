package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pompamc/vampire-village/internal/config"
	"github.com/pompamc/vampire-village/internal/hub"
	"github.com/pompamc/vampire-village/internal/ws"
)

func SetupRoutes(h *hub.Hub, cfg config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	presence := &ws.Presence{}

	r.Get("/api/health", Health)
	r.Get("/api/rooms", ListRooms(h))
	r.Get("/api/rooms/{code}/qr", RoomQR(h, cfg.PublicURL))
	r.Get("/api/online-count", OnlineCount(presence))
	r.Get("/ws", ws.Handler(h, log, presence))
	r.Get("/*", Static(cfg.StaticDir))
	return r
}
