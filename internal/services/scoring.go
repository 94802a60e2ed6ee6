package services

import (
	"math"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
)

// ScoreResult is the outcome of automatic grading over one attempt.
type ScoreResult struct {
	Score        float64 `json:"score"` // percentage, 0-100, rounded to 2 decimals
	CorrectCount int     `json:"correct_count"`
	TotalGraded  int     `json:"total_graded"`
}

// Score grades a completed set of (question, answer) pairs.
//
// Only auto-gradable questions participate: MCQ and subjective questions
// with a reference answer. Coding questions are excluded from TotalGraded
// entirely; they require teacher review. An auto-gradable question the
// student left unanswered counts as present but incorrect, never as an
// exclusion. When nothing is gradable the score is 0.
func Score(questions []models.Question, answers map[uint]string) ScoreResult {
	result := ScoreResult{}

	for i := range questions {
		q := &questions[i]
		if !q.AutoGradable() {
			continue
		}
		result.TotalGraded++
		if q.Matches(answers[q.ID]) {
			result.CorrectCount++
		}
	}

	if result.TotalGraded > 0 {
		raw := float64(result.CorrectCount) * 100 / float64(result.TotalGraded)
		result.Score = math.Round(raw*100) / 100
	}

	return result
}
