package database

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/codyseavey/card-linker/internal/models"
)

// pruneStaleMisses drops lookup misses nobody has typed within maxAge, so the
// report tracks what players are asking for now. A zero maxAge keeps everything.
func pruneStaleMisses(db *gorm.DB, maxAge time.Duration, now time.Time) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if !db.Migrator().HasTable(&models.LookupMiss{}) {
		return 0, nil // Fresh database
	}

	result := db.Where("last_seen < ?", now.Add(-maxAge)).Delete(&models.LookupMiss{})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Pruned %d lookup misses not seen since %s", result.RowsAffected, now.Add(-maxAge).Format("2006-01-02"))
	}
	return result.RowsAffected, nil
}
