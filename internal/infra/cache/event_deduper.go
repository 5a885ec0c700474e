package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
)

const keyPrefix = "booking:webhook:event:"

// EventDeduper remembers applied payment event ids for a bounded time.
// The payment record status remains the authoritative guard; this only
// short-circuits redeliveries before a transaction is opened.
type EventDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

var _ domain.EventDeduper = (*EventDeduper)(nil)

func NewEventDeduper(client *redis.Client, ttl time.Duration) *EventDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &EventDeduper{client: client, ttl: ttl}
}

func (d *EventDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *EventDeduper) Remember(ctx context.Context, eventID string) error {
	return d.client.Set(ctx, key(eventID), "1", d.ttl).Err()
}

func key(eventID string) string {
	return keyPrefix + eventID
}

// NewClient builds a redis client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
