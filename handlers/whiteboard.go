package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pavnoorsra/pswhiteboard/models"
	"github.com/pavnoorsra/pswhiteboard/realtime"
	"github.com/pavnoorsra/pswhiteboard/strokelog"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The whiteboard is open to any frontend origin, same as the
		// room codes themselves.
		return true
	},
}

const (
	// A client that has not answered a ping within pongWait is considered
	// gone and its session is torn down.
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	writeWait  = 10 * time.Second
)

// Whiteboard upgrades the connection and runs the session until the client
// disappears: one goroutine writes everything the service enqueues, this one
// reads and dispatches client events.
func Whiteboard(svc *realtime.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("Failed to upgrade to WebSocket: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to establish WebSocket connection"})
			return
		}

		sess := svc.Connect()
		defer func() {
			svc.Disconnect(sess)
			conn.Close()
			log.Printf("Session %s cleaned up", sess.ID)
		}()

		go writePump(conn, sess)

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			var msg models.ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				// Disconnect, timeout or garbage on the wire.
				log.Printf("Session %s read ended: %v", sess.ID, err)
				return
			}
			if err := dispatch(svc, sess, msg); err != nil {
				// Rejected events go back to this client only; nothing was
				// appended and nothing gets broadcast.
				sess.Send(models.ServerMessage{Type: models.MsgError, Error: err.Error()})
			}
		}
	}
}

func dispatch(svc *realtime.Service, sess *realtime.Session, msg models.ClientMessage) error {
	switch msg.Type {
	case models.MsgJoin:
		return svc.Join(sess, msg.Room)
	case models.MsgDraw:
		seg, err := msg.Segment()
		if err != nil {
			return err
		}
		return svc.Draw(sess, seg)
	case models.MsgUndo:
		return svc.Undo(sess)
	case models.MsgClear:
		return svc.Clear(sess)
	case models.MsgNewPage:
		return svc.NewPage(sess)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// writePump is the connection's only writer. It drains the session's
// outgoing channel in order and keeps the client alive with pings.
func writePump(conn *websocket.Conn, sess *realtime.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sess.Outgoing():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Session %s write failed: %v", sess.ID, err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-sess.Done():
			conn.Close()
			return
		}
	}
}

// PageSegments serves a page's replay over plain HTTP. The frontend's export
// feature uses this to redraw the full page without holding a socket open.
func PageSegments(strokeLog *strokelog.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		pageID := c.Param("pageID")
		segs, err := strokeLog.Replay(pageID)
		if err != nil {
			log.Printf("Replay of page %s failed: %v", pageID, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"pageId": pageID, "segments": segs})
	}
}
