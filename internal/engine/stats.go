package engine

import "sync/atomic"

// Stats is a snapshot of the engine's counters.
type Stats struct {
	CommentsProcessed uint64 `json:"comments_processed"`
	CacheHits         uint64 `json:"cache_hits"`
	PrefilterSkips    uint64 `json:"prefilter_skips"`
	ClassifierCalls   uint64 `json:"classifier_calls"`
	StaleResults      uint64 `json:"stale_results"`
	SwitchesExecuted  uint64 `json:"switches_executed"`
	Queued            uint64 `json:"queued"`
	Duplicates        uint64 `json:"duplicates"`
	RateLimited       uint64 `json:"rate_limited"`
	Dropped           uint64 `json:"dropped"`
	Errors            uint64 `json:"errors"`
}

// counters backs Stats with atomics so HTTP handlers can read while the
// event loop writes.
type counters struct {
	commentsProcessed atomic.Uint64
	cacheHits         atomic.Uint64
	prefilterSkips    atomic.Uint64
	classifierCalls   atomic.Uint64
	staleResults      atomic.Uint64
	switchesExecuted  atomic.Uint64
	queued            atomic.Uint64
	duplicates        atomic.Uint64
	rateLimited       atomic.Uint64
	dropped           atomic.Uint64
	errors            atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		CommentsProcessed: c.commentsProcessed.Load(),
		CacheHits:         c.cacheHits.Load(),
		PrefilterSkips:    c.prefilterSkips.Load(),
		ClassifierCalls:   c.classifierCalls.Load(),
		StaleResults:      c.staleResults.Load(),
		SwitchesExecuted:  c.switchesExecuted.Load(),
		Queued:            c.queued.Load(),
		Duplicates:        c.duplicates.Load(),
		RateLimited:       c.rateLimited.Load(),
		Dropped:           c.dropped.Load(),
		Errors:            c.errors.Load(),
	}
}
