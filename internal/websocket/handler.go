package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"servespot/internal/http-api/middleware"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler: handle upgrade request from HTTP connection to WebSocket.
// The connection starts unregistered; the client binds its identity with a
// register command once it knows who it is.
func WSHandler(registry *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		// get user info from JWT middleware
		role, userID, ok := middleware.CallerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user ID not found"})
			return
		}

		// upgrade HTTP connection to WebSocket
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade to WebSocket"})
			return
		}

		conn := NewConn(
			uuid.New().String(), // transport ID, one per connection (multiple tabs per user)
			userID,              // user ID from JWT
			role,                // role from JWT
			ws,                  // WebSocket connection
			registry,            // shared connection registry
		)

		// start goroutines for read and write pumps
		go conn.ReadPump()
		go conn.WritePump()
	}
}
