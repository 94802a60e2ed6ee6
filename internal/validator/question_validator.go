package validator

import (
	"fmt"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
)

// QuestionValidator handles question-specific validation. Malformed
// questions are a data-integrity error and must be rejected at creation
// time, not at grading time.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object against its type.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}

	switch question.Type {
	case models.QuestionMCQ:
		return v.validateMCQ(question)
	case models.QuestionSubjective:
		return v.validateSubjective(question)
	case models.QuestionCoding:
		return v.validateCoding(question)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMCQ(q *models.Question) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(q.Options) > 10 {
		return fmt.Errorf("cannot have more than 10 options")
	}

	seen := make(map[string]bool)
	correctFound := false
	for _, option := range q.Options {
		if option == "" {
			return fmt.Errorf("option text cannot be empty")
		}
		if seen[option] {
			return fmt.Errorf("duplicate option: %q", option)
		}
		seen[option] = true
		if option == q.CorrectAnswer {
			correctFound = true
		}
	}

	if q.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is required")
	}
	if !correctFound {
		return fmt.Errorf("correct answer must be one of the options")
	}
	if q.CodeTemplate != "" {
		return fmt.Errorf("code template is not valid for MCQ questions")
	}

	return nil
}

func (v *QuestionValidator) validateSubjective(q *models.Question) error {
	if q.CorrectAnswer == "" {
		return fmt.Errorf("reference answer is required")
	}
	if len(q.Options) > 0 {
		return fmt.Errorf("options are not valid for subjective questions")
	}
	if q.CodeTemplate != "" {
		return fmt.Errorf("code template is not valid for subjective questions")
	}
	return nil
}

func (v *QuestionValidator) validateCoding(q *models.Question) error {
	if q.CodeTemplate == "" {
		return fmt.Errorf("code template is required")
	}
	if len(q.Options) > 0 {
		return fmt.Errorf("options are not valid for coding questions")
	}
	if q.CorrectAnswer != "" {
		return fmt.Errorf("coding questions are graded manually and cannot carry a correct answer")
	}
	return nil
}
