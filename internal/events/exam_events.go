package events

import (
	"time"
)

// EventType represents different types of exam portal events
type EventType string

const (
	// Exam events
	EventExamScheduled EventType = "exam.scheduled"

	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptFinalized EventType = "attempt.finalized"
)

// ExamEvent is the base event structure for all exam portal events
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ExamScheduledEvent fans out to students when a teacher schedules an
// exam. Delivery is best-effort and never gates exam creation.
type ExamScheduledEvent struct {
	ExamID      uint   `json:"exam_id"`
	Title       string `json:"title"`
	StartTime   int64  `json:"start_time"`
	EndTime     int64  `json:"end_time"`
	Duration    int    `json:"duration"` // minutes
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

type AttemptStartedEvent struct {
	SessionID string    `json:"session_id"`
	ExamID    uint      `json:"exam_id"`
	ExamTitle string    `json:"exam_title"`
	StudentID string    `json:"student_id"`
	StartedAt time.Time `json:"started_at"`
	Deadline  int64     `json:"deadline"` // epoch millis
}

type AttemptFinalizedEvent struct {
	SessionID    string  `json:"session_id"`
	ExamID       uint    `json:"exam_id"`
	StudentID    string  `json:"student_id"`
	EndReason    string  `json:"end_reason"` // "submitted" or "expired"
	Score        float64 `json:"score"`
	CorrectCount int     `json:"correct_count"`
	TotalGraded  int     `json:"total_graded"`
	FinalizedAt  int64   `json:"finalized_at"` // epoch millis
}
