package domain

import "time"

// JobState enumerates the seed-run lifecycle for one category.
type JobState string

const (
	JobIdle    JobState = "idle"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobError   JobState = "error"
)

// JobStatus is the current seed-run value for a category. Only transitions
// mutate it; no history is kept.
type JobStatus struct {
	State      JobState
	StartedAt  time.Time
	FinishedAt time.Time
	Inserted   int
	Message    string
}
