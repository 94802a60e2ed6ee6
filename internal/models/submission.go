package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is the persisted result of a finalized attempt. It is
// created exactly once per attempt session and never mutated afterwards.
type Submission struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	SessionID string `json:"session_id" gorm:"uniqueIndex;not null;size:36"`
	ExamID    uint   `json:"exam_id" gorm:"not null;index"`
	StudentID string `json:"student_id" gorm:"not null;size:255;index"`

	// Epoch milliseconds at finalization.
	Timestamp int64 `json:"timestamp" gorm:"not null"`

	// Score is a percentage over auto-gradable questions only.
	Score        float64 `json:"score" gorm:"not null"`
	CorrectCount int     `json:"correct_count" gorm:"not null"`
	TotalGraded  int     `json:"total_graded" gorm:"not null"`

	// Raw answers map, question id -> submitted answer.
	Answers datatypes.JSONType[map[uint]string] `json:"answers" gorm:"type:jsonb"`

	// How the attempt ended: "submitted" or "expired".
	EndReason string `json:"end_reason" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Exam    Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

func (Submission) TableName() string {
	return "submissions"
}
