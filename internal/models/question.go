package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMCQ        QuestionType = "MCQ"
	QuestionSubjective QuestionType = "subjective"
	QuestionCoding     QuestionType = "coding"
)

// Question is a tagged variant over {MCQ, subjective, coding}. Exactly one
// type-specific field group is populated, matching Type:
//   - MCQ: Options (>=2 distinct) and CorrectAnswer equal to one option.
//   - subjective: CorrectAnswer as the reference answer.
//   - coding: CodeTemplate; no automated correctness check exists, so
//     coding questions are excluded from automatic scoring.
type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	ExamID *uint        `json:"exam_id" gorm:"index"`
	Text   string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Type   QuestionType `json:"type" gorm:"not null;size:20;index" validate:"required,question_type"`

	// MCQ fields
	Options       datatypes.JSONSlice[string] `json:"options,omitempty" gorm:"type:jsonb"`
	CorrectAnswer string                      `json:"correct_answer,omitempty" gorm:"size:500"`

	// Coding fields
	CodeTemplate string `json:"code_template,omitempty" gorm:"type:text"`

	CreatedBy string `json:"created_by" gorm:"size:255;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// AutoGradable reports whether correctness can be determined by string
// comparison without human review.
func (q *Question) AutoGradable() bool {
	switch q.Type {
	case QuestionMCQ:
		return true
	case QuestionSubjective:
		return q.CorrectAnswer != ""
	default:
		return false
	}
}

// Matches applies the type's matching rule to a stored answer. MCQ is
// exact and case-sensitive; subjective allows trim and case slack. An
// absent answer never matches. Coding questions never match.
func (q *Question) Matches(answer string) bool {
	switch q.Type {
	case QuestionMCQ:
		return answer != "" && answer == q.CorrectAnswer
	case QuestionSubjective:
		if answer == "" || q.CorrectAnswer == "" {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
	default:
		return false
	}
}

// RedactAnswerKey clears the reference answer before a question is shown
// to anyone but the exam creator. The code template stays, it is part of
// the prompt.
func (q *Question) RedactAnswerKey() {
	q.CorrectAnswer = ""
}

// SampleQuestions is the degenerate built-in question set used when an
// exam has no stored questions, keeping demo and test flows alive.
func SampleQuestions() []Question {
	return []Question{
		{ID: 1, Text: "What is 2 + 2?", Type: QuestionMCQ, Options: datatypes.NewJSONSlice([]string{"3", "4", "5", "6"}), CorrectAnswer: "4"},
		{ID: 2, Text: "What is the capital of France?", Type: QuestionMCQ, Options: datatypes.NewJSONSlice([]string{"London", "Berlin", "Paris", "Madrid"}), CorrectAnswer: "Paris"},
		{ID: 3, Text: "Which of these is a programming language?", Type: QuestionMCQ, Options: datatypes.NewJSONSlice([]string{"HTML", "CSS", "Java", "All of the above"}), CorrectAnswer: "All of the above"},
	}
}
