package models

import "time"

// RateLimitCounter is one fixed window for a client+route fingerprint.
type RateLimitCounter struct {
	Key          string    `db:"rate_key"`
	RequestCount int       `db:"request_count"`
	ExpiresAt    time.Time `db:"-"`
}

// CachedResponse is a stored response body with an absolute expiry.
type CachedResponse struct {
	Key       string    `db:"cache_key"`
	Body      []byte    `db:"response_data"`
	ExpiresAt time.Time `db:"-"`
}
