package kstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"huduku-gateway/internal/aggregate"
	"huduku-gateway/internal/cache"
	"huduku-gateway/internal/model"
)

// newReader creates a consumer-group reader with automatic offset commits.
func newReader(broker, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10 << 20,
		CommitInterval: time.Second,
	})
}

// ConsumeListingEvents purges cached composite responses whenever a listing
// mutation event arrives, so mutations show up before the TTL would have
// expired them. A purge failure is logged and the loop keeps going; the TTL
// is the fallback.
func ConsumeListingEvents(ctx context.Context, broker string, store cache.Cache, log *zap.SugaredLogger) error {
	reader := newReader(broker, TopicListingEvents, "gateway-cache-invalidator")
	defer reader.Close()

	log.Infow("cache invalidator consuming", "topic", TopicListingEvents)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			return err
		}
		invalidateOnEvent(ctx, store, msg.Value, log)
	}
}

// invalidateOnEvent applies one raw listing event to the cache. Unreadable
// events and failed purges are logged and skipped.
func invalidateOnEvent(ctx context.Context, store cache.Cache, value []byte, log *zap.SugaredLogger) {
	var evt model.ListingEvent
	if err := json.Unmarshal(value, &evt); err != nil {
		log.Warnw("unreadable listing event", "err", err)
		return
	}

	if err := store.Purge(ctx, aggregate.KeyPrefix); err != nil {
		log.Warnw("cache purge failed", "listing_id", evt.ListingID, "err", err)
		return
	}
	log.Debugw("purged composite cache", "action", evt.Action, "listing_id", evt.ListingID)
}
