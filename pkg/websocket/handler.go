package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades HTTP requests into journey observation streams.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeJourney subscribes the caller to booking updates for one journey.
func (h *Handler) ServeJourney(c *gin.Context) {
	journeyID := c.Param("journey_id")
	if journeyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "journey_id required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := NewClient(h.hub, conn, journeyID)
	client.Start()
}
