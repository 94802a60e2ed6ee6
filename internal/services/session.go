package services

import (
	"context"
	"sync"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionSubmitted  SessionState = "submitted"
	SessionExpired    SessionState = "expired"
)

const (
	EndReasonSubmitted = "submitted"
	EndReasonExpired   = "expired"
)

// tickInterval is the cadence of the expiry check.
const tickInterval = time.Second

// AttemptSession is one student's live attempt at one exam. It owns the
// countdown and the recorded answers, and finalizes exactly once: on
// explicit submit or on deadline expiry, whichever the session observes
// first. Ties favor expiry. Each session is owned exclusively by the
// student who created it.
type AttemptSession struct {
	ID        string
	Exam      *models.Exam
	StudentID string
	StartedAt int64 // epoch millis
	Deadline  int64 // StartedAt + DurationMinutes*60000

	questions []models.Question
	known     map[uint]struct{}

	mu      sync.Mutex
	state   SessionState
	answers map[uint]string
	record  *models.Submission

	// onFinalize runs exactly once, after the state transition, with the
	// produced submission record. It must not re-enter the session.
	onFinalize func(*models.Submission)
}

// StartSession validates the attempt window and opens a session. Both
// boundary timestamps are inside the window; 1ms outside either end fails
// with ErrOutsideWindow. An exam with no stored questions falls back to
// the built-in sample set.
func StartSession(exam *models.Exam, questions []models.Question, studentID string, now time.Time) (*AttemptSession, error) {
	nowMillis := now.UnixMilli()
	if !exam.WindowContains(nowMillis) {
		return nil, ErrOutsideWindow
	}

	if len(questions) == 0 {
		questions = models.SampleQuestions()
	}

	known := make(map[uint]struct{}, len(questions))
	for i := range questions {
		known[questions[i].ID] = struct{}{}
	}

	return &AttemptSession{
		ID:        uuid.NewString(),
		Exam:      exam,
		StudentID: studentID,
		StartedAt: nowMillis,
		Deadline:  exam.AttemptDeadline(nowMillis),
		questions: questions,
		known:     known,
		state:     SessionInProgress,
		answers:   make(map[uint]string),
	}, nil
}

// SetFinalizeHook registers the callback invoked once with the submission
// record when the session finalizes.
func (s *AttemptSession) SetFinalizeHook(fn func(*models.Submission)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinalize = fn
}

// State returns the current session state.
func (s *AttemptSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Questions returns the question set presented to the student.
func (s *AttemptSession) Questions() []models.Question {
	return s.questions
}

// Answers returns a copy of the recorded answers.
func (s *AttemptSession) Answers() map[uint]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// RecordAnswer stores the student's answer for a question, overwriting any
// prior value. Allowed only while the session is in progress.
func (s *AttemptSession) RecordAnswer(questionID uint, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionInProgress {
		return ErrAttemptAlreadyFinalized
	}
	if _, ok := s.known[questionID]; !ok {
		return ErrUnknownQuestion
	}

	s.answers[questionID] = value
	return nil
}

// Tick computes the time remaining. When the deadline has elapsed and the
// session is still in progress it transitions to Expired and produces the
// submission record through the same finalize path as an explicit submit.
// A session always finalizes, even if the student takes no action.
func (s *AttemptSession) Tick(now time.Time) (remaining time.Duration, finalized bool) {
	s.mu.Lock()

	remainingMillis := s.Deadline - now.UnixMilli()
	if remainingMillis > 0 || s.state != SessionInProgress {
		done := s.state != SessionInProgress
		s.mu.Unlock()
		if remainingMillis < 0 {
			remainingMillis = 0
		}
		return time.Duration(remainingMillis) * time.Millisecond, done
	}

	record := s.finalizeLocked(EndReasonExpired, now)
	hook := s.onFinalize
	s.mu.Unlock()

	if hook != nil {
		hook(record)
	}
	return 0, true
}

// Submit finalizes the session by user action. Calling Submit after
// finalization is a no-op returning the already-produced record. When the
// deadline has already elapsed the session expires instead; ties favor
// expiry for determinism.
func (s *AttemptSession) Submit(now time.Time) (*models.Submission, error) {
	s.mu.Lock()

	if s.state != SessionInProgress {
		record := s.record
		s.mu.Unlock()
		return record, nil
	}

	reason := EndReasonSubmitted
	if now.UnixMilli() >= s.Deadline {
		reason = EndReasonExpired
	}

	record := s.finalizeLocked(reason, now)
	hook := s.onFinalize
	s.mu.Unlock()

	if hook != nil {
		hook(record)
	}
	return record, nil
}

// Record returns the submission record, or nil while in progress.
func (s *AttemptSession) Record() *models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

// finalizeLocked performs the one-shot terminal transition. Callers hold
// the mutex and have checked the session is still in progress, so only
// one finalize path can win.
func (s *AttemptSession) finalizeLocked(reason string, now time.Time) *models.Submission {
	if reason == EndReasonExpired {
		s.state = SessionExpired
	} else {
		s.state = SessionSubmitted
	}

	answers := make(map[uint]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	result := Score(s.questions, answers)

	s.record = &models.Submission{
		SessionID:    s.ID,
		ExamID:       s.Exam.ID,
		StudentID:    s.StudentID,
		Timestamp:    now.UnixMilli(),
		Score:        result.Score,
		CorrectCount: result.CorrectCount,
		TotalGraded:  result.TotalGraded,
		Answers:      datatypes.NewJSONType(answers),
		EndReason:    reason,
	}
	return s.record
}

// RunTimer drives the expiry check on a fixed 1-second cadence until the
// session finalizes or ctx is cancelled. The ticker is always released on
// exit regardless of which path ended the session.
func (s *AttemptSession) RunTimer(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, finalized := s.Tick(now); finalized {
				return
			}
		}
	}
}
