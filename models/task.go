// models/task.go
package models

import (
	"errors"
	"math"
	"time"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "not_started"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Human maps a status to its display label.
func (s TaskStatus) Human() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200"`
	Description string     `json:"description" gorm:"type:text"`
	CategoryID  uint       `json:"category_id" gorm:"not null;index"`
	Category    *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	OwnerID     uint       `json:"owner_id" gorm:"not null;index"`
	Owner       *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	TeamID      uint       `json:"team_id" gorm:"not null;index"`
	Team        *Team      `json:"team,omitempty" gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Status      TaskStatus `json:"status" gorm:"not null;size:20;default:'not_started'"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

var (
	ErrEndWithoutStart = errors.New("cannot set end time without start time")
	ErrEndBeforeStart  = errors.New("end time must be after start time")
)

// StatusFor derives the lifecycle status from the timestamp pair.
// The status column is persisted for compatibility but is always
// recomputed on mutation so it cannot drift.
func StatusFor(start, end *time.Time) TaskStatus {
	switch {
	case start != nil && end != nil:
		return StatusCompleted
	case start != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Validate checks the timestamp invariants.
func (t *Task) Validate() error {
	if t.EndTime != nil && t.StartTime == nil {
		return ErrEndWithoutStart
	}
	if t.StartTime != nil && t.EndTime != nil && !t.EndTime.After(*t.StartTime) {
		return ErrEndBeforeStart
	}
	return nil
}

// Duration returns elapsed whole minutes between start and end, using
// now for tasks still running. Callers doing aggregation must pass a
// single now across the whole pass so row and total stay consistent.
func (t *Task) Duration(now time.Time) int {
	if t.StartTime == nil {
		return 0
	}
	end := now
	if t.EndTime != nil {
		end = *t.EndTime
	}
	return int(math.Round(end.Sub(*t.StartTime).Minutes()))
}
