package apitest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsHub tracks live connections per organization so a task change made by
// one client reaches the others.
type wsHub struct {
	mu    sync.Mutex
	conns map[int64]map[*websocket.Conn]struct{}
}

func (h *wsHub) register(orgID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns == nil {
		h.conns = make(map[int64]map[*websocket.Conn]struct{})
	}
	if h.conns[orgID] == nil {
		h.conns[orgID] = make(map[*websocket.Conn]struct{})
	}
	h.conns[orgID][conn] = struct{}{}
}

func (h *wsHub) unregister(orgID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.conns[orgID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, orgID)
		}
	}
}

func (h *wsHub) broadcast(orgID int64, message any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns[orgID] {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		_ = conn.WriteJSON(message)
	}
}

func (s *Server) broadcastTaskUpdate(orgID int64, action string, taskID int64) {
	s.hub.broadcast(orgID, gin.H{
		"type": "task_update",
		"data": gin.H{"action": action, "task_id": taskID},
	})
}

// handleTaskUpdatesWS mirrors the production /ws/task-updates endpoint: the
// token arrives as a query parameter because browsers cannot set headers on
// a websocket.
func (s *Server) handleTaskUpdatesWS(c *gin.Context) {
	userID, err := parseToken(c.Query("token"))
	if err != nil {
		detailError(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	var user userRow
	if err := s.DB.First(&user, userID).Error; err != nil {
		detailError(c, http.StatusUnauthorized, "User not found")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.hub.register(user.OrganizationID, conn)
	defer func() {
		s.hub.unregister(user.OrganizationID, conn)
		_ = conn.Close()
	}()

	conn.SetReadLimit(1024)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
