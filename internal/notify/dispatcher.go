package notify

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

// Sender delivers a fact to the customer. Delivery channels (email, SMS)
// plug in here.
type Sender interface {
	Send(ctx context.Context, fact Fact) error
}

// LogSender writes facts to the log.
type LogSender struct {
	Log logrus.FieldLogger
}

func (s LogSender) Send(_ context.Context, fact Fact) error {
	s.Log.WithFields(logrus.Fields{
		"type":        fact.Type,
		"booking_id":  fact.BookingID,
		"customer_id": fact.CustomerID,
		"start_time":  fact.StartTime,
		"reason":      fact.Reason,
	}).Info("booking notification")
	return nil
}

// Dispatcher consumes booking facts from the subscriber and hands them to
// the sender. Undecodable messages are acked and dropped; sender failures
// are nacked so the broker may redeliver.
type Dispatcher struct {
	subscriber message.Subscriber
	sender     Sender
	log        logrus.FieldLogger
}

func NewDispatcher(subscriber message.Subscriber, sender Sender, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{subscriber: subscriber, sender: sender, log: log}
}

// Run blocks until ctx is cancelled or every subscription is closed.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, topic := range []string{TopicBookingConfirmed, TopicBookingCancelled} {
		messages, err := d.subscriber.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		wg.Add(1)
		go func(topic string, messages <-chan *message.Message) {
			defer wg.Done()
			for msg := range messages {
				d.handle(ctx, topic, msg)
			}
		}(topic, messages)
	}

	wg.Wait()
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, topic string, msg *message.Message) {
	var fact Fact
	if err := json.Unmarshal(msg.Payload, &fact); err != nil {
		d.log.WithError(err).WithField("topic", topic).Warn("dropping malformed notification")
		msg.Ack()
		return
	}

	if err := d.sender.Send(ctx, fact); err != nil {
		d.log.WithError(err).
			WithField("booking_id", fact.BookingID).
			Error("notification delivery failed")
		msg.Nack()
		return
	}
	msg.Ack()
}
