package services

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

type countingReloader struct {
	calls atomic.Int32
}

func (r *countingReloader) Reload(ctx context.Context) (*IndexStats, error) {
	r.calls.Add(1)
	return &IndexStats{}, nil
}

func TestCatalogWatcherRelevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.tsv")

	w, err := NewCatalogWatcher(path, &countingReloader{})
	if err != nil {
		t.Fatalf("NewCatalogWatcher failed: %v", err)
	}
	defer w.Close()

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write", fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{"create", fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{"rename", fsnotify.Event{Name: path, Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestCatalogWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.tsv")
	if err := os.WriteFile(path, []byte(testCatalogTSV), 0644); err != nil {
		t.Fatal(err)
	}

	reloader := &countingReloader{}
	w, err := NewCatalogWatcher(path, reloader)
	if err != nil {
		t.Fatalf("NewCatalogWatcher failed: %v", err)
	}
	defer w.Close()
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Several quick writes collapse into one reload
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(testCatalogTSV), 0644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for reloader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if reloader.calls.Load() == 0 {
		t.Error("Expected a reload after the card file changed")
	}
}
