package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ridehail/internal/dispatch"
)

// WSHandler upgrades client connections and keeps them registered for
// ride status pushes.
type WSHandler struct {
	registry *dispatch.WSRegistry
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(registry *dispatch.WSRegistry) *WSHandler {
	return &WSHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Connect handles GET /ws/:userID
func (h *WSHandler) Connect(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "user ID is required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade for %s failed: %v", userID, err)
		return
	}

	h.registry.Add(userID, conn)

	// Drain the connection until the client goes away. Inbound frames are
	// ignored; this socket is push only.
	go func() {
		defer func() {
			h.registry.Remove(userID)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
