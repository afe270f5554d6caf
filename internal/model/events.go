package model

// SearchPerformed is published to marketplace.search.requests whenever a
// composite listings search misses the cache and hits the backends.
type SearchPerformed struct {
	Fingerprint string            `json:"fingerprint"`
	Filters     map[string]string `json:"filters"`
	Results     int               `json:"results"`
	Timestamp   string            `json:"timestamp"`
}

// ListingEvent is published to marketplace.listing.events after a successful
// mutation. Consumers use it to invalidate cached composite responses.
type ListingEvent struct {
	Action    string `json:"action"` // created, updated, deleted, image_uploaded, image_deleted
	ListingID int64  `json:"listing_id"`
	UserID    int64  `json:"user_id"`
	Timestamp string `json:"timestamp"`
}
