package services

import (
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/card-linker/internal/models"
)

// MissRecorder is told about queries that matched nothing
type MissRecorder interface {
	RecordMiss(query string)
}

// MissLogService keeps a count of not-found queries in the database. It is
// write-mostly and never consulted during resolution.
type MissLogService struct {
	db *gorm.DB
}

func NewMissLogService(db *gorm.DB) *MissLogService {
	return &MissLogService{db: db}
}

// RecordMiss upserts the miss in the background so lookups never wait on sqlite
func (s *MissLogService) RecordMiss(query string) {
	key := Scrub(query)
	if s == nil || s.db == nil || key == "" {
		return
	}
	go func() {
		if err := s.record(key, query, time.Now()); err != nil {
			log.Printf("Warning: failed to record lookup miss %q: %v", key, err)
		}
	}()
}

func (s *MissLogService) record(key, query string, now time.Time) error {
	miss := models.LookupMiss{
		Key:       key,
		RawQuery:  query,
		Hits:      1,
		FirstSeen: now,
		LastSeen:  now,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"hits":      gorm.Expr("hits + 1"),
			"raw_query": query,
			"last_seen": now,
		}),
	}).Create(&miss).Error
}

// TopMisses returns the most frequent misses first
func (s *MissLogService) TopMisses(limit int) (*models.LookupMissResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var total int64
	if err := s.db.Model(&models.LookupMiss{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var misses []models.LookupMiss
	if err := s.db.Order("hits DESC, last_seen DESC").Limit(limit).Find(&misses).Error; err != nil {
		return nil, err
	}

	return &models.LookupMissResponse{Misses: misses, TotalCount: total}, nil
}

// ClearMiss removes a miss once a curator has dealt with it
func (s *MissLogService) ClearMiss(key string) (bool, error) {
	result := s.db.Where("query_key = ?", Scrub(key)).Delete(&models.LookupMiss{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
