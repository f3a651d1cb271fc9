package database

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pavnoorsra/pswhiteboard/models"
)

// SQLiteStore persists segments in a local sqlite file through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

func ConnectSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&models.SegmentRow{}); err != nil {
		return nil, fmt.Errorf("migrate segments table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(pageID, segmentID string, seg models.StrokeSegment) error {
	row := models.SegmentRow{
		PageID:    pageID,
		SegmentID: segmentID,
		X0:        seg.X0,
		Y0:        seg.Y0,
		X1:        seg.X1,
		Y1:        seg.Y1,
		Color:     seg.Color,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteLast(pageID string) (models.StrokeSegment, error) {
	var row models.SegmentRow
	err := s.db.Where("page_id = ?", pageID).Order("id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StrokeSegment{}, ErrNotFound
	}
	if err != nil {
		return models.StrokeSegment{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := s.db.Delete(&row).Error; err != nil {
		return models.StrokeSegment{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return row.Segment(), nil
}

func (s *SQLiteStore) DeleteAll(pageID string) error {
	if err := s.db.Where("page_id = ?", pageID).Delete(&models.SegmentRow{}).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) List(pageID string) ([]models.StrokeSegment, error) {
	var rows []models.SegmentRow
	if err := s.db.Where("page_id = ?", pageID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	segs := make([]models.StrokeSegment, 0, len(rows))
	for _, row := range rows {
		segs = append(segs, row.Segment())
	}
	return segs, nil
}
