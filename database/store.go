package database

import (
	"errors"

	"github.com/pavnoorsra/pswhiteboard/models"
)

// Store is the persistence adapter consumed by the stroke log. List must
// return segments in the order they were Put, and DeleteLast must remove the
// most recently Put entry that has not been deleted yet. The stroke log is
// agnostic to what actually backs it.
type Store interface {
	Put(pageID, segmentID string, seg models.StrokeSegment) error
	DeleteLast(pageID string) (models.StrokeSegment, error)
	DeleteAll(pageID string) error
	List(pageID string) ([]models.StrokeSegment, error)
}

var (
	// ErrNotFound is returned by DeleteLast when the page has no segments.
	ErrNotFound = errors.New("no segments stored for page")

	// ErrUnavailable wraps backend failures. Callers treat it as transient:
	// the operation failed, nothing was applied, and a retry may succeed.
	ErrUnavailable = errors.New("persistence unavailable")
)
