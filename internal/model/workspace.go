package model

import "time"

// Workspace is the tenant boundary. SprintStartDate is the origin for all
// sprint-number arithmetic; changing it retroactively shifts which sprint a
// given date falls into, so it is treated as immutable once set.
type Workspace struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	SprintStartDate  time.Time `json:"sprint_start_date"`
	SprintLengthDays int       `json:"sprint_length_days"`
	CreatedAt        time.Time `json:"created_at"`
}
