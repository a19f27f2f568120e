package domain

import "time"

// CycleStats holds counters for one full sweep over all configured sources.
type CycleStats struct {
	Sources     int
	FetchErrors int
	Fetched     int
	New         int
	Announced   int
	SendErrors  int
	StoreErrors int
	Skipped     int
	Purged      int64
	Duration    time.Duration
}
