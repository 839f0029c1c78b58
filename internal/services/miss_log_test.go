package services

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/card-linker/internal/models"
)

func newTestMissLog(t *testing.T) *MissLogService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "misses.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.LookupMiss{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return NewMissLogService(db)
}

func TestMissLogRecordAndList(t *testing.T) {
	svc := newTestMissLog(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := svc.record(Scrub("Tom Bombadil"), "Tom Bombadil", now); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.record(Scrub("tom-bombadil"), "tom-bombadil", now.Add(time.Minute)); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.record(Scrub("Glorfindel"), "Glorfindel", now); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	result, err := svc.TopMisses(10)
	if err != nil {
		t.Fatalf("TopMisses failed: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("Expected 2 distinct misses, got %d", result.TotalCount)
	}
	if len(result.Misses) != 2 {
		t.Fatalf("Expected 2 misses, got %d", len(result.Misses))
	}

	top := result.Misses[0]
	if top.Key != "tombombadil" || top.Hits != 2 {
		t.Errorf("Expected tombombadil with 2 hits first, got %s with %d", top.Key, top.Hits)
	}
	if top.RawQuery != "tom-bombadil" {
		t.Errorf("Expected the latest spelling, got %q", top.RawQuery)
	}
}

func TestMissLogClear(t *testing.T) {
	svc := newTestMissLog(t)

	if err := svc.record("glorfindel", "Glorfindel", time.Now()); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.ClearMiss("Glorfindel")
	if err != nil {
		t.Fatalf("ClearMiss failed: %v", err)
	}
	if !removed {
		t.Error("Expected the miss to be removed")
	}

	removed, err = svc.ClearMiss("glorfindel")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("Expected nothing left to remove")
	}
}

func TestMissLogNilSafe(t *testing.T) {
	var svc *MissLogService
	svc.RecordMiss("anything")
}
