package events

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/binhbb2204/BookHub/internal/library"
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/binhbb2204/BookHub/pkg/utils"
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

type StatisticsSource interface {
	ComputeStatistics(ctx context.Context, bookID string) models.RatingStatistics
}

type Server struct {
	hub       *Hub
	jwtSecret string
	stats     StatisticsSource
}

func NewServer(hub *Hub, jwtSecret string, stats StatisticsSource) *Server {
	return &Server{hub: hub, jwtSecret: jwtSecret, stats: stats}
}

func tokenFrom(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// ServeBook upgrades the request and subscribes it to events of the book
// in the :id path parameter. The token is read from ?token= or the
// Authorization header.
func (s *Server) ServeBook(c *gin.Context) {
	token := tokenFrom(c)
	if token == "" {
		utils.RespondError(c, http.StatusUnauthorized, "token required")
		return
	}
	claims, err := utils.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	bookID := c.Param("id")
	if !library.ValidateID(bookID) {
		utils.RespondError(c, http.StatusBadRequest, "Invalid Book ID")
		return
	}
	if !s.hub.Running() {
		utils.RespondError(c, http.StatusServiceUnavailable, "live updates unavailable")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.hub.log.Error("websocket_upgrade_failed", "error", err)
		return
	}

	id, _ := utils.GenerateID(16)
	client := &Client{
		ID:       id,
		UserID:   claims.UserID,
		Username: claims.Username,
		BookID:   bookID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		hub:      s.hub,
	}

	if s.stats != nil {
		snapshot := Event{
			ID:        id,
			Type:      EventSnapshot,
			BookID:    bookID,
			Timestamp: time.Now().UTC(),
			Data:      s.stats.ComputeStatistics(c.Request.Context(), bookID),
		}
		if data, err := json.Marshal(snapshot); err == nil {
			client.Send <- data
		}
	}

	if !s.hub.join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
