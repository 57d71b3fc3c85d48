package model

import "time"

// Repository is a repository returned by the popularity search.
type Repository struct {
	FullName string
	Stars    int
}

// Qualification is the inclusion decision taken for a discovered repository.
type Qualification struct {
	RepoFullName string
	ClosedPRs    int
	Qualified    bool
	CheckedAt    time.Time
}

// CollectionRun summarizes one execution of the collector.
type CollectionRun struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	ReposSeen      int
	ReposQualified int
	ReposFailed    int
	Records        int
}
