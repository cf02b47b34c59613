package models

import "time"

// JobType is the engagement kind of a job listing.
type JobType string

const (
	JobFullTime JobType = "Full-time"
	JobSeasonal JobType = "Seasonal"
	JobContract JobType = "Contract"
)

// Job is a listing posted by a user.
type Job struct {
	ID          string    `firestore:"id" json:"id" validate:"required"`
	AuthorID    string    `firestore:"authorId" json:"authorId" validate:"required"`
	Title       string    `firestore:"title" json:"title" validate:"required,notblank"`
	Company     string    `firestore:"company" json:"company" validate:"required,notblank"`
	Location    string    `firestore:"location" json:"location" validate:"required,notblank"`
	Description string    `firestore:"description" json:"description"`
	SalaryRange string    `firestore:"salaryRange,omitempty" json:"salaryRange,omitempty"`
	Type        JobType   `firestore:"type" json:"type" validate:"required,oneof=Full-time Seasonal Contract"`
	PostedAt    time.Time `firestore:"postedAt" json:"postedAt" validate:"required"`
	CropFocus   string    `firestore:"cropFocus,omitempty" json:"cropFocus,omitempty"`
}

// SavedJob bookmarks a job for a user. Its document ID is SavedJobID(UserID, JobID).
type SavedJob struct {
	ID     string `firestore:"id" json:"id"`
	UserID string `firestore:"userId" json:"userId"`
	JobID  string `firestore:"jobId" json:"jobId"`
}

// SavedJobID is the composite document key of a bookmark.
func SavedJobID(userID, jobID string) string {
	return userID + "_" + jobID
}
