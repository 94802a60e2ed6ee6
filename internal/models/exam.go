package models

import (
	"time"

	"gorm.io/gorm"
)

// Exam is a scheduled exam. It is created once by a verified teacher and
// never mutated in place; there is no edit or reschedule operation.
type Exam struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`

	// Attempt window, epoch milliseconds. EndTime must be after StartTime.
	StartTime int64 `json:"start_time" gorm:"not null;index" validate:"required"`
	EndTime   int64 `json:"end_time" gorm:"not null;index" validate:"required,gtfield=StartTime"`

	// Wall-clock budget for a single attempt, independent of the window.
	DurationMinutes int `json:"duration_minutes" gorm:"not null" validate:"required,min=1,max=300"`

	MaxAttempts int `json:"max_attempts" gorm:"default:1" validate:"min=1,max=10"`

	// Identity provider UID of the verified teacher who scheduled the exam.
	CreatedBy   string `json:"created_by" gorm:"not null;size:255;index"`
	TeacherName string `json:"teacher_name" gorm:"size:100"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`

	// Computed, not stored
	QuestionsCount int  `json:"questions_count" gorm:"-"`
	IsOpen         bool `json:"is_open" gorm:"-"`
}

func (Exam) TableName() string {
	return "exams"
}

// WindowContains reports whether an attempt may start at the given
// instant. Both boundary timestamps are inside the window.
func (e *Exam) WindowContains(nowMillis int64) bool {
	return nowMillis >= e.StartTime && nowMillis <= e.EndTime
}

// AttemptDeadline returns the finalize deadline for an attempt started at
// the given instant, in epoch milliseconds.
func (e *Exam) AttemptDeadline(startedAtMillis int64) int64 {
	return startedAtMillis + int64(e.DurationMinutes)*60_000
}
