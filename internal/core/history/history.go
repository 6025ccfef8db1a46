// Package history defines the persisted record of bisect sessions.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session ID is unknown.
var ErrNotFound = errors.New("bisect session not found")

// Status is the lifecycle state of a recorded session.
type Status string

const (
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusInconclusive Status = "inconclusive"
	StatusCancelled    Status = "cancelled"
)

// Finished reports whether no further steps will be recorded.
func (s Status) Finished() bool {
	return s != StatusRunning
}

// Step is one recorded verdict.
type Step struct {
	Version   string    `json:"version"`
	Good      bool      `json:"good"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a bisect run as stored on disk.
type Session struct {
	ID         string    `json:"id"`
	Good       string    `json:"good"`
	Bad        string    `json:"bad"`
	RangeSize  int       `json:"range_size"`
	Status     Status    `json:"status"`
	ResultGood string    `json:"result_good,omitempty"`
	ResultBad  string    `json:"result_bad,omitempty"`
	Steps      []Step    `json:"steps,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Duration returns the time between creation and the last update.
func (s Session) Duration() time.Duration {
	return s.UpdatedAt.Sub(s.CreatedAt)
}

// Store persists bisect sessions.
type Store interface {
	Create(ctx context.Context, sess Session) error
	AddStep(ctx context.Context, sessionID string, step Step) error
	Finish(ctx context.Context, sessionID string, status Status, resultGood, resultBad string) error
	Get(ctx context.Context, sessionID string) (Session, error)
	List(ctx context.Context, limit int) ([]Session, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
