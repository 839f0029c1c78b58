package database

import (
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/card-linker/internal/models"
)

var DB *gorm.DB

// Initialize opens the database and migrates the schema. Lookup misses older
// than missRetention are pruned first; zero keeps them all.
func Initialize(dbPath string, missRetention time.Duration) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	log.Println("Database connected successfully")

	if _, err := pruneStaleMisses(DB, missRetention, time.Now()); err != nil {
		log.Printf("Warning: failed to prune stale lookup misses: %v", err)
	}

	// Auto-migrate the schema
	err = DB.AutoMigrate(&models.LookupMiss{})
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
