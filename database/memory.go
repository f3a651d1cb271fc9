package database

import (
	"sync"

	"github.com/pavnoorsra/pswhiteboard/models"
)

// MemoryStore keeps every page's segments in process memory. It is the
// default store for tests and survives nothing, which is fine: durability is
// the job of the sqlite and postgres backends.
type MemoryStore struct {
	mu    sync.Mutex
	pages map[string][]models.StrokeSegment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string][]models.StrokeSegment)}
}

func (s *MemoryStore) Put(pageID, segmentID string, seg models.StrokeSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seg.ID = segmentID
	s.pages[pageID] = append(s.pages[pageID], seg)
	return nil
}

func (s *MemoryStore) DeleteLast(pageID string) (models.StrokeSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := s.pages[pageID]
	if len(segs) == 0 {
		return models.StrokeSegment{}, ErrNotFound
	}
	last := segs[len(segs)-1]
	s.pages[pageID] = segs[:len(segs)-1]
	return last, nil
}

func (s *MemoryStore) DeleteAll(pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, pageID)
	return nil
}

func (s *MemoryStore) List(pageID string) ([]models.StrokeSegment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := make([]models.StrokeSegment, len(s.pages[pageID]))
	copy(segs, s.pages[pageID])
	return segs, nil
}
