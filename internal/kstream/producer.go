// Package kstream publishes gateway events to Kafka and runs the listing
// event consumer that keeps the response cache honest.
package kstream

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"huduku-gateway/internal/model"
)

const (
	// TopicSearchRequests records every composite search that reached the
	// backends (cache misses only).
	TopicSearchRequests = "marketplace.search.requests"
	// TopicListingEvents records successful listing mutations.
	TopicListingEvents = "marketplace.listing.events"
)

// Producer publishes gateway events. All publishing is fire and forget from
// the handlers' point of view: a broker problem is logged, never surfaced.
type Producer struct {
	broker string
}

// NewProducer creates a producer for the given broker address.
func NewProducer(broker string) *Producer {
	return &Producer{broker: broker}
}

// writer constructs a Kafka producer. kafka.Writer batches asynchronously so
// publishing never blocks the request path.
func (p *Producer) writer(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(p.broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
}

// PublishSearchPerformed records a composite search on the search topic,
// keyed by fingerprint so identical queries land on one partition.
func (p *Producer) PublishSearchPerformed(ctx context.Context, evt model.SearchPerformed) error {
	w := p.writer(TopicSearchRequests)
	defer w.Close()

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(evt.Fingerprint),
		Value: data,
		Time:  time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}

// PublishListingEvent records a listing mutation, keyed by listing id for
// per-listing ordering.
func (p *Producer) PublishListingEvent(ctx context.Context, evt model.ListingEvent) error {
	w := p.writer(TopicListingEvents)
	defer w.Close()

	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(evt.ListingID, 10)),
		Value: data,
		Time:  time.Now(),
	}
	return w.WriteMessages(ctx, msg)
}
