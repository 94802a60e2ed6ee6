package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testExam() *models.Exam {
	return &models.Exam{
		ID:              1,
		Title:           "Midterm",
		StartTime:       1_000_000,
		EndTime:         2_000_000,
		DurationMinutes: 30,
		MaxAttempts:     1,
		CreatedBy:       "teacher-uid",
	}
}

func testQuestions() []models.Question {
	return []models.Question{
		{ID: 10, Text: "Pick A", Type: models.QuestionMCQ,
			Options: datatypes.NewJSONSlice([]string{"A", "B"}), CorrectAnswer: "A"},
		{ID: 11, Text: "Pick B", Type: models.QuestionMCQ,
			Options: datatypes.NewJSONSlice([]string{"A", "B"}), CorrectAnswer: "B"},
		{ID: 12, Text: "Name the capital", Type: models.QuestionSubjective,
			CorrectAnswer: "Paris"},
		{ID: 13, Text: "Write fizzbuzz", Type: models.QuestionCoding,
			CodeTemplate: "func fizzbuzz(n int) string {\n}\n"},
	}
}

func TestStartSession_WindowBoundaries(t *testing.T) {
	exam := testExam()

	tests := []struct {
		name      string
		nowMillis int64
		wantErr   error
	}{
		{"at start boundary", exam.StartTime, nil},
		{"at end boundary", exam.EndTime, nil},
		{"inside window", (exam.StartTime + exam.EndTime) / 2, nil},
		{"1ms before start", exam.StartTime - 1, ErrOutsideWindow},
		{"1ms after end", exam.EndTime + 1, ErrOutsideWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(tt.nowMillis))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, session)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, SessionInProgress, session.State())
		})
	}
}

func TestStartSession_DeadlineFromDuration(t *testing.T) {
	exam := testExam()
	started := time.UnixMilli(exam.StartTime)

	session, err := StartSession(exam, testQuestions(), "student-1", started)
	require.NoError(t, err)

	assert.Equal(t, exam.StartTime, session.StartedAt)
	assert.Equal(t, exam.StartTime+int64(exam.DurationMinutes)*60_000, session.Deadline)
}

func TestStartSession_SampleFallback(t *testing.T) {
	exam := testExam()

	session, err := StartSession(exam, nil, "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	questions := session.Questions()
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.Equal(t, models.QuestionMCQ, q.Type)
		assert.NotEmpty(t, q.CorrectAnswer)
	}
}

func TestRecordAnswer(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	require.NoError(t, session.RecordAnswer(10, "A"))
	require.NoError(t, session.RecordAnswer(10, "B")) // overwrite
	assert.Equal(t, "B", session.Answers()[10])

	assert.ErrorIs(t, session.RecordAnswer(999, "A"), ErrUnknownQuestion)
}

func TestRecordAnswer_AfterFinalize(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	_, err = session.Submit(time.UnixMilli(exam.StartTime + 1000))
	require.NoError(t, err)

	assert.ErrorIs(t, session.RecordAnswer(10, "A"), ErrAttemptAlreadyFinalized)
}

func TestSubmit_ScoresAndFinalizes(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	require.NoError(t, session.RecordAnswer(10, "A"))       // correct
	require.NoError(t, session.RecordAnswer(11, "A"))       // wrong
	require.NoError(t, session.RecordAnswer(12, "  paris ")) // correct after trim+fold
	require.NoError(t, session.RecordAnswer(13, "code"))    // coding, not graded

	submittedAt := time.UnixMilli(exam.StartTime + 5000)
	record, err := session.Submit(submittedAt)
	require.NoError(t, err)

	assert.Equal(t, SessionSubmitted, session.State())
	assert.Equal(t, EndReasonSubmitted, record.EndReason)
	assert.Equal(t, session.ID, record.SessionID)
	assert.Equal(t, exam.ID, record.ExamID)
	assert.Equal(t, "student-1", record.StudentID)
	assert.Equal(t, submittedAt.UnixMilli(), record.Timestamp)
	assert.Equal(t, 2, record.CorrectCount)
	assert.Equal(t, 3, record.TotalGraded)
	assert.InDelta(t, 66.67, record.Score, 0.001)
}

func TestSubmit_Idempotent(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	var hookCalls int
	session.SetFinalizeHook(func(*models.Submission) { hookCalls++ })

	first, err := session.Submit(time.UnixMilli(exam.StartTime + 1000))
	require.NoError(t, err)
	second, err := session.Submit(time.UnixMilli(exam.StartTime + 9000))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, hookCalls)
}

func TestSubmit_AtDeadlineTieFavorsExpiry(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	record, err := session.Submit(time.UnixMilli(session.Deadline))
	require.NoError(t, err)

	assert.Equal(t, SessionExpired, session.State())
	assert.Equal(t, EndReasonExpired, record.EndReason)
}

func TestTick_ExpiresAtDeadline(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	require.NoError(t, session.RecordAnswer(10, "A"))

	remaining, finalized := session.Tick(time.UnixMilli(session.Deadline - 1))
	assert.False(t, finalized)
	assert.Equal(t, time.Millisecond, remaining)

	remaining, finalized = session.Tick(time.UnixMilli(session.Deadline))
	assert.True(t, finalized)
	assert.Zero(t, remaining)

	record := session.Record()
	require.NotNil(t, record)
	assert.Equal(t, SessionExpired, session.State())
	assert.Equal(t, EndReasonExpired, record.EndReason)
	// Answers recorded before expiry still count.
	assert.Equal(t, 1, record.CorrectCount)
	assert.Equal(t, 3, record.TotalGraded)
}

func TestTick_AfterFinalizeKeepsRecord(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	first, err := session.Submit(time.UnixMilli(exam.StartTime + 1000))
	require.NoError(t, err)

	_, finalized := session.Tick(time.UnixMilli(session.Deadline + 60_000))
	assert.True(t, finalized)
	assert.Same(t, first, session.Record())
	assert.Equal(t, SessionSubmitted, session.State())
}

func TestFinalize_ConcurrentPathsProduceOneRecord(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	var mu sync.Mutex
	var records []*models.Submission
	session.SetFinalizeHook(func(r *models.Submission) {
		mu.Lock()
		records = append(records, r)
		mu.Unlock()
	})

	at := time.UnixMilli(session.Deadline)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(submit bool) {
			defer wg.Done()
			if submit {
				session.Submit(at)
			} else {
				session.Tick(at)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Len(t, records, 1)
	assert.Equal(t, SessionExpired, session.State())
}

func TestTick_BeforeDeadlineRacesSubmit(t *testing.T) {
	exam := testExam()
	session, err := StartSession(exam, testQuestions(), "student-1", time.UnixMilli(exam.StartTime))
	require.NoError(t, err)

	before := time.UnixMilli(session.Deadline - 1)
	at := time.UnixMilli(session.Deadline)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, done := session.Tick(before); done {
				return
			}
		}
	}()
	session.Submit(at)
	wg.Wait()

	_, done := session.Tick(before)
	assert.True(t, done)
	assert.Equal(t, SessionExpired, session.State())
}

func TestRunTimer_StopsOnCancel(t *testing.T) {
	exam := &models.Exam{
		ID:              2,
		Title:           "Long exam",
		StartTime:       time.Now().Add(-time.Minute).UnixMilli(),
		EndTime:         time.Now().Add(time.Hour).UnixMilli(),
		DurationMinutes: 60,
	}
	session, err := StartSession(exam, testQuestions(), "student-1", time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		session.RunTimer(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not stop after cancel")
	}
	assert.Equal(t, SessionInProgress, session.State())
}
