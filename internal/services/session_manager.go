package services

import (
	"log"
	"sync"
	"time"

	"github.com/codyseavey/card-linker/internal/metrics"
	"github.com/codyseavey/card-linker/internal/models"
)

const (
	// sessionTTL is how long a triggering message keeps its responses editable
	sessionTTL = 24 * time.Hour
	// purgeInterval is the minimum time between two purge passes
	purgeInterval = time.Hour
)

// SlotState is the state of one response slot in a session
type SlotState int

const (
	SlotEmpty  SlotState = iota // no response produced yet
	SlotActive                  // a response exists and follows edits
	SlotClosed                  // accepted or deleted; never touched again
)

func (s SlotState) String() string {
	switch s {
	case SlotActive:
		return "active"
	case SlotClosed:
		return "closed"
	}
	return "empty"
}

// Slot tracks the response produced for one trigger in a message
type Slot struct {
	State      SlotState
	ResponseID models.Snowflake
}

// Session tracks the responses produced for one triggering message, one slot
// per trigger in order of occurrence. All methods require the session lock,
// which SessionManager.With holds for the callback.
type Session struct {
	SourceID  models.Snowflake
	ChannelID models.Snowflake
	AuthorID  models.Snowflake
	Timestamp time.Time

	mu      sync.Mutex
	manager *SessionManager
	slots   []Slot
	closed  bool
}

// Closed reports whether a control action has closed the session. Closed
// sessions ignore edits of the triggering message.
func (s *Session) Closed() bool {
	return s.closed
}

// Slot returns slot i, or an empty slot past the end
func (s *Session) Slot(i int) Slot {
	if i < 0 || i >= len(s.slots) {
		return Slot{}
	}
	return s.slots[i]
}

func (s *Session) Len() int {
	return len(s.slots)
}

// Ensure grows the session to at least n slots
func (s *Session) Ensure(n int) {
	for len(s.slots) < n {
		s.slots = append(s.slots, Slot{})
	}
}

// Activate records the response produced for slot i
func (s *Session) Activate(i int, responseID models.Snowflake) {
	s.Ensure(i + 1)
	prev := s.slots[i]
	s.slots[i] = Slot{State: SlotActive, ResponseID: responseID}
	s.manager.bindResponse(prev.ResponseID, responseID, s.SourceID)
}

// closeResponse marks the slot holding responseID closed, and with it the session
func (s *Session) closeResponse(responseID models.Snowflake) bool {
	for i := range s.slots {
		if s.slots[i].ResponseID == responseID && s.slots[i].State != SlotEmpty {
			s.slots[i].State = SlotClosed
			s.closed = true
			return true
		}
	}
	return false
}

// SessionManager holds one Session per triggering message. The map has its
// own lock; each session has a lock of its own so work on unrelated messages
// never contends.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[models.Snowflake]*Session
	responses map[models.Snowflake]models.Snowflake // response -> triggering message
	lastPurge time.Time

	ttl           time.Duration
	purgeInterval time.Duration
	now           func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions:      make(map[models.Snowflake]*Session),
		responses:     make(map[models.Snowflake]models.Snowflake),
		lastPurge:     time.Now(),
		ttl:           sessionTTL,
		purgeInterval: purgeInterval,
		now:           time.Now,
	}
}

// Get returns the session for a triggering message without locking it
func (m *SessionManager) Get(sourceID models.Snowflake) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sourceID]
	return s, ok
}

// With runs fn on the session for msg, creating it if needed, while holding
// the session lock
func (m *SessionManager) With(msg models.Message, fn func(*Session)) {
	m.mu.Lock()
	s, ok := m.sessions[msg.ID]
	if !ok {
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = m.now()
		}
		s = &Session{
			SourceID:  msg.ID,
			ChannelID: msg.ChannelID,
			AuthorID:  msg.Author.ID,
			Timestamp: ts,
			manager:   m,
		}
		m.sessions[msg.ID] = s
		metrics.SessionsActive.Set(float64(len(m.sessions)))
	}
	m.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// SourceOf returns the triggering message a response was produced for
func (m *SessionManager) SourceOf(responseID models.Snowflake) (models.Snowflake, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.responses[responseID]
	return src, ok
}

// CloseResponse closes the slot holding responseID. sourceID may be zero when
// the caller does not know the triggering message.
func (m *SessionManager) CloseResponse(sourceID, responseID models.Snowflake) bool {
	if sourceID == 0 {
		src, ok := m.SourceOf(responseID)
		if !ok {
			return false
		}
		sourceID = src
	}

	s, ok := m.Get(sourceID)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeResponse(responseID)
}

func (m *SessionManager) bindResponse(prev, responseID, sourceID models.Snowflake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev != 0 && prev != responseID {
		delete(m.responses, prev)
	}
	m.responses[responseID] = sourceID
}

// MaybePurge runs Purge if at least the purge interval has passed since the
// last run. It is driven by ordinary chat traffic rather than a timer, so on
// a quiet server expired sessions simply wait for the next message.
func (m *SessionManager) MaybePurge() int {
	m.mu.Lock()
	due := m.now().Sub(m.lastPurge) >= m.purgeInterval
	m.mu.Unlock()

	if !due {
		return 0
	}
	return m.Purge()
}

// Purge drops every session whose triggering message is older than the TTL,
// whatever its state
func (m *SessionManager) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.lastPurge = now

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.Timestamp) <= m.ttl {
			continue
		}
		delete(m.sessions, id)
		removed++
	}

	if removed > 0 {
		// Drop reverse entries that now point at nothing
		for resp, src := range m.responses {
			if _, ok := m.sessions[src]; !ok {
				delete(m.responses, resp)
			}
		}
		log.Printf("Sessions: purged %d expired sessions (%d remaining)", removed, len(m.sessions))
		metrics.SessionsPurged.Add(float64(removed))
	}
	metrics.SessionsActive.Set(float64(len(m.sessions)))
	return removed
}

// Len returns the number of tracked sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
