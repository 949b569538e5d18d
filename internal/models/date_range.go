package models

import "time"

// DateRange is a pair of wall-clock instants in epoch milliseconds.
// Timezone suffixes in the source phrase are discarded, never converted.
type DateRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// StartTime returns Start as a time in loc
func (r DateRange) StartTime(loc *time.Location) time.Time {
	return time.UnixMilli(r.Start).In(loc)
}

// EndTime returns End as a time in loc
func (r DateRange) EndTime(loc *time.Location) time.Time {
	return time.UnixMilli(r.End).In(loc)
}
