package audit

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

var _ Sink = (*Logger)(nil)

func (l *Logger) Log(ev Event) error {
	entry := models.AuditLog{
		UserID:   ev.UserID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: encodeMetadata(ev.Metadata),
	}

	return l.db.Create(&entry).Error
}

// MemorySink keeps events in memory for the in-memory storage driver and tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
	times  []time.Time
}

func (m *MemorySink) Log(ev Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.times = append(m.times, time.Now())
	m.mu.Unlock()
	return nil
}

func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
