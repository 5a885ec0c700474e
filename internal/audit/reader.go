package audit

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

type Filter struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Reader lists persisted audit entries, newest first.
type Reader interface {
	List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error)
}

var (
	_ Reader = (*Logger)(nil)
	_ Reader = (*MemorySink)(nil)
)

func (l *Logger) List(ctx context.Context, f Filter) ([]models.AuditLog, int64, error) {
	q := l.db.WithContext(ctx).Model(&models.AuditLog{})

	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := q.Order("created_at DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&logs).Error
	return logs, total, err
}

func (m *MemorySink) List(_ context.Context, f Filter) ([]models.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.AuditLog
	for i, ev := range m.events {
		at := m.times[i]
		if f.Action != "" && ev.Action != f.Action {
			continue
		}
		if f.Entity != "" && ev.Entity != f.Entity {
			continue
		}
		if f.From != nil && at.Before(*f.From) {
			continue
		}
		if f.To != nil && !at.Before(*f.To) {
			continue
		}
		matched = append(matched, models.AuditLog{
			ID:        uint(i + 1),
			UserID:    ev.UserID,
			Action:    ev.Action,
			Entity:    ev.Entity,
			EntityID:  ev.EntityID,
			Metadata:  encodeMetadata(ev.Metadata),
			CreatedAt: at,
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func encodeMetadata(meta any) string {
	if meta == nil {
		return ""
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(b)
}
