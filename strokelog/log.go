// Package strokelog is the ordered record of every stroke segment, one
// sequence per page. It owns id assignment and goes through the persistence
// adapter for every mutation, so a restarted process picks up where the
// store left off.
package strokelog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pavnoorsra/pswhiteboard/database"
	"github.com/pavnoorsra/pswhiteboard/models"
)

// ErrEmptyPage is returned by RemoveLast when the page has nothing left to
// undo. Callers treat it as a benign no-op, not a failure.
var ErrEmptyPage = errors.New("page has no segments")

// Log assigns sequence ids and persists segments per page. Each page has its
// own lock, so unrelated pages never wait on each other.
type Log struct {
	store database.Store

	mu    sync.Mutex
	pages map[string]*pageState
}

type pageState struct {
	mu   sync.Mutex
	next uint64 // next sequence number, 0 = not yet recovered from the store
}

func New(store database.Store) *Log {
	return &Log{store: store, pages: make(map[string]*pageState)}
}

func (l *Log) page(pageID string) *pageState {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.pages[pageID]
	if !ok {
		p = &pageState{}
		l.pages[pageID] = p
	}
	return p
}

// ensureSeq recovers the page's next sequence number from whatever the store
// already holds. Caller holds the page lock.
func (l *Log) ensureSeq(pageID string, p *pageState) error {
	if p.next != 0 {
		return nil
	}
	segs, err := l.store.List(pageID)
	if err != nil {
		return err
	}
	p.next = 1
	if len(segs) > 0 {
		last := segs[len(segs)-1].ID
		if n, err := strconv.ParseUint(strings.TrimPrefix(last, "s"), 10, 64); err == nil {
			p.next = n + 1
		}
	}
	return nil
}

// Append assigns the page's next id to the segment, persists it and returns
// the stored segment. Relative order for one page always matches call order.
func (l *Log) Append(pageID string, seg models.StrokeSegment) (models.StrokeSegment, error) {
	p := l.page(pageID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := l.ensureSeq(pageID, p); err != nil {
		return models.StrokeSegment{}, err
	}
	seg.ID = fmt.Sprintf("s%d", p.next)
	if err := l.store.Put(pageID, seg.ID, seg); err != nil {
		return models.StrokeSegment{}, err
	}
	p.next++
	return seg, nil
}

// RemoveLast removes and returns the most recently appended segment that has
// not been removed yet. The sequence keeps counting up, so ids are never
// reused within a running process.
func (l *Log) RemoveLast(pageID string) (models.StrokeSegment, error) {
	p := l.page(pageID)
	p.mu.Lock()
	defer p.mu.Unlock()

	seg, err := l.store.DeleteLast(pageID)
	if errors.Is(err, database.ErrNotFound) {
		return models.StrokeSegment{}, ErrEmptyPage
	}
	if err != nil {
		return models.StrokeSegment{}, err
	}
	return seg, nil
}

// Clear removes every segment on the page. Clearing an already-empty page is
// a no-op.
func (l *Log) Clear(pageID string) error {
	p := l.page(pageID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := l.ensureSeq(pageID, p); err != nil {
		return err
	}
	return l.store.DeleteAll(pageID)
}

// Replay returns the page's segments in insertion order. Every call starts
// from the beginning and reflects all mutations that completed before it.
func (l *Log) Replay(pageID string) ([]models.StrokeSegment, error) {
	p := l.page(pageID)
	p.mu.Lock()
	defer p.mu.Unlock()

	return l.store.List(pageID)
}
