package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	TopicBookingConfirmed = "booking.confirmed"
	TopicBookingCancelled = "booking.cancelled"
)

// Fact is a booking event consumed by the notification channel.
type Fact struct {
	Type       string    `json:"type"`
	BookingID  uint      `json:"booking_id"`
	CustomerID uint      `json:"customer_id"`
	BarberID   uint      `json:"barber_id"`
	StartTime  time.Time `json:"start_time"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, fact Fact) error
}

type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ Publisher = (*WatermillPublisher)(nil)

func (p *WatermillPublisher) Publish(ctx context.Context, fact Fact) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("type", fact.Type)

	return p.publisher.Publish(fact.Type, msg)
}
