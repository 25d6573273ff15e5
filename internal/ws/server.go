package ws

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/gorilla/websocket"

	"github.com/truekeo/truekeo-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is consumed by the mobile client, not browsers.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Handler upgrades /ws requests. The client authenticates with its API
// token passed as a query parameter, since mobile WebSocket clients cannot
// set headers reliably.
func Handler(manager *Manager, jwtService *utils.JWTService, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := jwtService.ExtractUserID(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		newClient(userID, conn, manager).start()
	}
}

// Serve runs the WebSocket listener on its own port.
func Serve(addr string, manager *Manager, jwtService *utils.JWTService, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", Handler(manager, jwtService, log))
	log.Info("websocket listener started", zap.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
