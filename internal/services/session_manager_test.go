package services

import (
	"testing"
	"time"

	"github.com/codyseavey/card-linker/internal/models"
)

func newTestSessionManager(now time.Time) *SessionManager {
	m := NewSessionManager()
	m.now = func() time.Time { return now }
	m.lastPurge = now
	return m
}

func openSession(m *SessionManager, id models.Snowflake, ts time.Time) {
	m.With(models.Message{ID: id, ChannelID: 1, Author: models.User{ID: 7}, Timestamp: ts}, func(s *Session) {
		s.Activate(0, id+1000)
	})
}

func TestSessionManagerPurge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestSessionManager(now)

	openSession(m, 1, now.Add(-25*time.Hour))
	openSession(m, 2, now.Add(-23*time.Hour))
	openSession(m, 3, now.Add(-24*time.Hour))

	removed := m.Purge()
	if removed != 1 {
		t.Errorf("Expected 1 session purged, got %d", removed)
	}
	if _, ok := m.Get(1); ok {
		t.Error("Session older than 24h should be purged")
	}
	if _, ok := m.Get(2); !ok {
		t.Error("Session younger than 24h should be kept")
	}
	if _, ok := m.Get(3); !ok {
		t.Error("Session exactly 24h old should be kept")
	}
	if _, ok := m.SourceOf(1001); ok {
		t.Error("Reverse index entry of a purged session should be dropped")
	}
	if src, ok := m.SourceOf(1002); !ok || src != 2 {
		t.Error("Reverse index entry of a kept session should remain")
	}
}

func TestSessionManagerPurgeClosedSessions(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestSessionManager(now)

	openSession(m, 1, now.Add(-48*time.Hour))
	m.CloseResponse(1, 1001)

	if removed := m.Purge(); removed != 1 {
		t.Errorf("Expected closed session to be purged too, got %d removed", removed)
	}
}

func TestSessionManagerMaybePurge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newTestSessionManager(now)
	openSession(m, 1, now.Add(-30*time.Hour))

	m.lastPurge = now.Add(-30 * time.Minute)
	if removed := m.MaybePurge(); removed != 0 {
		t.Errorf("Expected no purge within the interval, got %d removed", removed)
	}
	if m.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", m.Len())
	}

	m.lastPurge = now.Add(-2 * time.Hour)
	if removed := m.MaybePurge(); removed != 1 {
		t.Errorf("Expected a purge after the interval, got %d removed", removed)
	}
	if !m.lastPurge.Equal(now) {
		t.Errorf("Expected last purge to be updated to %v, got %v", now, m.lastPurge)
	}
}

func TestSessionSlots(t *testing.T) {
	m := NewSessionManager()
	msg := models.Message{ID: 50, ChannelID: 5, Author: models.User{ID: 7}}

	m.With(msg, func(s *Session) {
		if s.Slot(0).State != SlotEmpty {
			t.Errorf("Expected empty slot, got %s", s.Slot(0).State)
		}
		s.Activate(1, 501)
		if s.Len() != 2 {
			t.Errorf("Expected 2 slots, got %d", s.Len())
		}
		if s.Slot(0).State != SlotEmpty {
			t.Errorf("Expected slot 0 to stay empty, got %s", s.Slot(0).State)
		}
		if got := s.Slot(1); got.State != SlotActive || got.ResponseID != 501 {
			t.Errorf("Unexpected slot 1: %+v", got)
		}
	})

	session, ok := m.Get(50)
	if !ok {
		t.Fatal("Expected session to exist")
	}
	if session.AuthorID != 7 || session.ChannelID != 5 {
		t.Errorf("Unexpected session owner: author %s channel %s", session.AuthorID, session.ChannelID)
	}
	if session.Timestamp.IsZero() {
		t.Error("Expected a timestamp for a message without one")
	}

	if !m.CloseResponse(0, 501) {
		t.Fatal("Expected CloseResponse to find the response through the reverse index")
	}
	m.With(msg, func(s *Session) {
		if !s.Closed() {
			t.Error("Expected session to be closed")
		}
		if s.Slot(1).State != SlotClosed {
			t.Errorf("Expected slot 1 closed, got %s", s.Slot(1).State)
		}
	})

	if m.CloseResponse(50, 999) {
		t.Error("Expected CloseResponse to report an unknown response")
	}
}

func TestSessionActivateRebindsResponse(t *testing.T) {
	m := NewSessionManager()
	msg := models.Message{ID: 60, Author: models.User{ID: 7}}

	m.With(msg, func(s *Session) { s.Activate(0, 601) })
	m.With(msg, func(s *Session) { s.Activate(0, 602) })

	if _, ok := m.SourceOf(601); ok {
		t.Error("Replaced response should leave the reverse index")
	}
	if src, ok := m.SourceOf(602); !ok || src != 60 {
		t.Error("New response should map to its triggering message")
	}
}
