// Package aggregate composes listing search results with their images and
// owns the response cache in front of that composition.
package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"huduku-gateway/internal/cache"
	"huduku-gateway/internal/clients"
	"huduku-gateway/internal/model"
)

// Engine orchestrates the primary listing search plus the per-listing image
// sub-reads and caches the merged result.
type Engine struct {
	inventory *clients.InventoryClient
	store     cache.Cache
	ttl       time.Duration
	log       *zap.SugaredLogger
}

// NewEngine creates an aggregation engine with the given cache TTL.
func NewEngine(inventory *clients.InventoryClient, store cache.Cache, ttl time.Duration, log *zap.SugaredLogger) *Engine {
	return &Engine{inventory: inventory, store: store, ttl: ttl, log: log}
}

// ListWithImages returns listings matching filters, each with its images
// attached. The second return reports whether the response came from the
// cache. A failed primary search is fatal; a failed image sub-read degrades
// that one listing to an empty image list.
func (e *Engine) ListWithImages(ctx context.Context, filters map[string]string) ([]model.AggregateListing, bool, error) {
	key := CacheKey(filters)

	if data, err := e.store.Get(ctx, key); err == nil {
		var cached []model.AggregateListing
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true, nil
		}
		e.log.Warnw("dropping undecodable cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		// Cache store trouble must not block the read path.
		e.log.Warnw("cache read failed", "key", key, "err", err)
	}

	listings, err := e.inventory.SearchListings(ctx, filters)
	if err != nil {
		return nil, false, err
	}

	results := e.attachImages(ctx, listings)

	if data, err := json.Marshal(results); err == nil {
		if err := e.store.Set(ctx, key, data, e.ttl); err != nil {
			e.log.Warnw("cache write failed", "key", key, "err", err)
		}
	}
	return results, false, nil
}

// GetWithImages composes a single listing with its images. Uncached: detail
// reads are rare compared to searches and must reflect fresh state.
func (e *Engine) GetWithImages(ctx context.Context, listingID int64) (*model.AggregateListing, error) {
	listing, err := e.inventory.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	images, err := e.inventory.ListImages(ctx, listingID)
	if err != nil {
		e.log.Warnw("image fetch degraded to empty", "listing_id", listingID, "err", err)
		images = nil
	}
	if images == nil {
		images = []model.ListingImage{}
	}
	return &model.AggregateListing{ListingSummary: *listing, Images: images}, nil
}

// attachImages fans out one image fetch per listing over a bounded worker
// pool. Every listing starts with an empty image list, so a failed or
// cancelled sub-call leaves a valid degraded entry and never touches its
// siblings.
func (e *Engine) attachImages(ctx context.Context, listings []model.ListingSummary) []model.AggregateListing {
	results := make([]model.AggregateListing, len(listings))
	for i, listing := range listings {
		results[i] = model.AggregateListing{ListingSummary: listing, Images: []model.ListingImage{}}
	}
	if len(listings) == 0 {
		return results
	}

	workers := calcWorkerCount(len(listings))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				images, err := e.inventory.ListImages(ctx, listings[idx].ID)
				if err != nil {
					e.log.Warnw("image fetch degraded to empty", "listing_id", listings[idx].ID, "err", err)
					continue
				}
				if images != nil {
					results[idx].Images = images
				}
			}
		}()
	}

feed:
	for idx := range listings {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func calcWorkerCount(n int) int {
	if n <= 0 {
		return 1
	}
	if n < 4 {
		return n
	}
	if n > 16 {
		return 16
	}
	return n
}
