package domain

import "time"

// CacheEntry is the stored result and status for one query and its arguments.
type CacheEntry struct {
	Key       string
	Query     string
	Args      Args
	Status    Status
	Data      any
	Err       error
	Provided  []TaggedRef
	Stale     bool
	Mounted   int
	SettledAt time.Time
}

// IsSuccess reports whether the entry holds a successful result.
func (e CacheEntry) IsSuccess() bool {
	return e.Status == StatusSuccess
}

// IsError reports whether the entry holds an error.
func (e CacheEntry) IsError() bool {
	return e.Status == StatusError
}
