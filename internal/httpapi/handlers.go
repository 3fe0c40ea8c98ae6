package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"

	"github.com/pompamc/vampire-village/internal/hub"
	"github.com/pompamc/vampire-village/internal/ws"
)

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Time   int64  `json:"time"`
	}{Status: "ok", Time: time.Now().Unix()})
}

// OnlineCount reports how many websocket sessions are currently open.
func OnlineCount(p *ws.Presence) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Count int64 `json:"count"`
		}{Count: p.Count()})
	}
}

// ListRooms returns lobbies that are still open to join.
func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := h.OpenRooms()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Rooms any `json:"rooms"`
		}{Rooms: rooms})
	}
}

// RoomQR renders a join link for the room as a PNG QR code, for handing
// a lobby around in person.
func RoomQR(h *hub.Hub, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.ToUpper(chi.URLParam(r, "code"))
		if h.Get(code) == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}
		link := fmt.Sprintf("%s/?join=%s", strings.TrimRight(publicURL, "/"), code)
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "failed to render qr", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// Static serves the web client, falling back to index.html for any path
// that isn't a real file so client-side routes still load.
func Static(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	}
}
