package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pavnoorsra/pswhiteboard/database"
	"github.com/pavnoorsra/pswhiteboard/models"
	"github.com/pavnoorsra/pswhiteboard/pages"
	"github.com/pavnoorsra/pswhiteboard/realtime"
	"github.com/pavnoorsra/pswhiteboard/rooms"
	"github.com/pavnoorsra/pswhiteboard/strokelog"
)

func testServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pm := pages.NewManager()
	strokeLog := strokelog.New(database.NewMemoryStore())
	svc := realtime.NewService(rooms.NewRegistry(pm.NewPage), strokeLog, pm)

	router := gin.New()
	router.GET("/ws", Whiteboard(svc))
	router.GET("/pages/:pageID/segments", PageSegments(strokeLog))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, label string) models.ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("%s read failed: %v", label, err)
	}
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msg models.ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestWebsocketRoundTrip(t *testing.T) {
	_, wsURL := testServer(t)
	f := func(v float64) *float64 { return &v }

	a := dial(t, wsURL)
	send(t, a, models.ClientMessage{Type: models.MsgJoin, Room: "abcdef"})
	replay := readMessage(t, a, "A")
	if replay.Type != models.MsgReplayed || replay.PageID == "" {
		t.Fatalf("A expected replayed, got %+v", replay)
	}
	pageID := replay.PageID

	b := dial(t, wsURL)
	send(t, b, models.ClientMessage{Type: models.MsgJoin, Room: "ABCDEF"})
	replay = readMessage(t, b, "B")
	if replay.PageID != pageID {
		t.Fatalf("code must case-normalize into the same room, got %+v", replay)
	}

	// A draws: B sees it, A does not get an echo
	send(t, a, models.ClientMessage{Type: models.MsgDraw, X0: f(0), Y0: f(0), X1: f(10), Y1: f(10), Color: "black"})
	drawn := readMessage(t, b, "B")
	if drawn.Type != models.MsgDrawn || drawn.Segment == nil || drawn.Segment.ID != "s1" {
		t.Fatalf("B expected drawn s1, got %+v", drawn)
	}

	// A undoes: both get the removal. A never saw its own drawn event, so
	// removed being the very next message on A's wire proves there was no
	// echo.
	send(t, a, models.ClientMessage{Type: models.MsgUndo})
	for _, c := range []struct {
		conn  *websocket.Conn
		label string
	}{{a, "A"}, {b, "B"}} {
		msg := readMessage(t, c.conn, c.label)
		if msg.Type != models.MsgRemoved || msg.ID != "s1" {
			t.Fatalf("%s expected removed s1, got %+v", c.label, msg)
		}
	}
}

func TestMalformedEventsAreRejectedToSenderOnly(t *testing.T) {
	_, wsURL := testServer(t)
	f := func(v float64) *float64 { return &v }

	a := dial(t, wsURL)

	// draw before joining any room
	send(t, a, models.ClientMessage{Type: models.MsgDraw, X0: f(0), Y0: f(0), X1: f(1), Y1: f(1)})
	if msg := readMessage(t, a, "A"); msg.Type != models.MsgError {
		t.Fatalf("expected error reply, got %+v", msg)
	}

	send(t, a, models.ClientMessage{Type: models.MsgJoin, Room: "ABCDEF"})
	readMessage(t, a, "A") // replayed

	// missing coordinates never reach the log
	send(t, a, models.ClientMessage{Type: models.MsgDraw, X0: f(0)})
	if msg := readMessage(t, a, "A"); msg.Type != models.MsgError {
		t.Fatalf("expected error reply, got %+v", msg)
	}

	// unknown type
	send(t, a, models.ClientMessage{Type: "scribble"})
	if msg := readMessage(t, a, "A"); msg.Type != models.MsgError {
		t.Fatalf("expected error reply, got %+v", msg)
	}
}

func TestPageSegmentsEndpoint(t *testing.T) {
	srv, wsURL := testServer(t)
	f := func(v float64) *float64 { return &v }

	a := dial(t, wsURL)
	send(t, a, models.ClientMessage{Type: models.MsgJoin, Room: "ABCDEF"})
	replay := readMessage(t, a, "A")

	send(t, a, models.ClientMessage{Type: models.MsgDraw, X0: f(0), Y0: f(0), X1: f(10), Y1: f(10)})
	send(t, a, models.ClientMessage{Type: models.MsgDraw, X0: f(10), Y0: f(10), X1: f(20), Y1: f(20)})

	// the draws are acknowledged implicitly; undo forces a round-trip so we
	// know both appends completed before hitting the replay endpoint
	send(t, a, models.ClientMessage{Type: models.MsgUndo})
	readMessage(t, a, "A")

	resp, err := http.Get(srv.URL + "/pages/" + replay.PageID + "/segments")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		PageID   string                 `json:"pageId"`
		Segments []models.StrokeSegment `json:"segments"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(body.Segments) != 1 || body.Segments[0].ID != "s1" {
		t.Fatalf("expected [s1], got %+v", body.Segments)
	}
}
