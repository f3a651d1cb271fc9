package models

import (
	"errors"
	"regexp"
	"strings"
)

// Inbound message types.
const (
	MsgJoin    = "join"
	MsgDraw    = "draw"
	MsgUndo    = "undo"
	MsgClear   = "clear"
	MsgNewPage = "new_page"
)

// Outbound message types.
const (
	MsgReplayed     = "replayed"
	MsgDrawn        = "drawn"
	MsgRemoved      = "removed"
	MsgCleared      = "cleared"
	MsgPageSwitched = "page_switched"
	MsgError        = "error"
)

var (
	ErrBadRoomCode        = errors.New("room code must be 6 alphanumeric characters")
	ErrMissingCoordinates = errors.New("draw message is missing coordinates")
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ClientMessage is one inbound websocket message. Coordinates are pointers so
// a field the client left out can be told apart from a legitimate zero.
type ClientMessage struct {
	Type  string   `json:"type"`
	Room  string   `json:"room,omitempty"`
	X0    *float64 `json:"x0,omitempty"`
	Y0    *float64 `json:"y0,omitempty"`
	X1    *float64 `json:"x1,omitempty"`
	Y1    *float64 `json:"y1,omitempty"`
	Color string   `json:"color,omitempty"`
}

// ServerMessage is one outbound websocket message.
type ServerMessage struct {
	Type     string          `json:"type"`
	PageID   string          `json:"pageId,omitempty"`
	Segment  *StrokeSegment  `json:"segment,omitempty"`
	Segments []StrokeSegment `json:"segments,omitempty"`
	ID       string          `json:"id,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// NormalizeRoomCode upper-cases the code and validates its shape. The client
// enters 6-character codes; the server is the one that actually enforces it.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !roomCodePattern.MatchString(code) {
		return "", ErrBadRoomCode
	}
	return code, nil
}

// Segment validates a draw message and converts it into a segment with no ID.
// The ID is assigned later by the stroke log.
func (m *ClientMessage) Segment() (StrokeSegment, error) {
	if m.X0 == nil || m.Y0 == nil || m.X1 == nil || m.Y1 == nil {
		return StrokeSegment{}, ErrMissingCoordinates
	}
	color := m.Color
	if color == "" {
		color = "black"
	}
	return StrokeSegment{X0: *m.X0, Y0: *m.Y0, X1: *m.X1, Y1: *m.Y1, Color: color}, nil
}
