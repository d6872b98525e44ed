package handlers

import (
	"log"
	"net/http"
	"time"

	"velvet_back_end/internal/cache"

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

const wsPingInterval = 30 * time.Second

// GET /ws/stock — relaie les événements de stock Redis vers le client.
// La connexion est fermée quand le client part ou quand Redis se tait.
func StockWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	sub := cache.SubscribeStockEvents(ctx)
	defer sub.Close()

	// Draine les messages du client pour détecter la déconnexion.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	events := sub.Channel()
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
