package model

import "time"

// SchedulePeriod is one column of the physical-financial schedule.
// Date is the ordering key.
type SchedulePeriod struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// ScheduleAllocation assigns a percentage of a stage's value to a period.
// Absent allocations mean 0%.
type ScheduleAllocation struct {
	Stage      string  `json:"stage"`
	PeriodID   string  `json:"periodId"`
	Percentage float64 `json:"percentage"`
}
