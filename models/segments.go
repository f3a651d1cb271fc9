package models

import "gorm.io/gorm"

// StrokeSegment is one atomic line primitive: two endpoints and a color.
// The ID is assigned by the stroke log when the segment is accepted and is
// monotonically increasing within a page.
type StrokeSegment struct {
	ID    string  `json:"id"`
	X0    float64 `json:"x0"`
	Y0    float64 `json:"y0"`
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	Color string  `json:"color"`
}

// SegmentRow is the persisted form of a stroke segment. The gorm primary key
// preserves insertion order, which is what List and DeleteLast rely on.
type SegmentRow struct {
	gorm.Model
	PageID    string `json:"pageID" gorm:"index"`
	SegmentID string `json:"segmentID"`
	X0        float64
	Y0        float64
	X1        float64
	Y1        float64
	Color     string
}

// Segment converts a stored row back into its wire form.
func (r SegmentRow) Segment() StrokeSegment {
	return StrokeSegment{
		ID:    r.SegmentID,
		X0:    r.X0,
		Y0:    r.Y0,
		X1:    r.X1,
		Y1:    r.Y1,
		Color: r.Color,
	}
}
