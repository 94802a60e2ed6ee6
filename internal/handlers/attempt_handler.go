package handlers

import (
	"net/http"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/models"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// ===== REQUEST / RESPONSE STRUCTURES =====

type StartAttemptRequest struct {
	ExamID uint `json:"exam_id" binding:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Value      string `json:"value"`
}

// questionView is the student-facing projection of a question. The
// reference answer never leaves the server during an attempt.
type questionView struct {
	ID           uint                `json:"id"`
	Text         string              `json:"text"`
	Type         models.QuestionType `json:"type"`
	Options      []string            `json:"options,omitempty"`
	CodeTemplate string              `json:"code_template,omitempty"`
}

type sessionResponse struct {
	SessionID string          `json:"session_id"`
	ExamID    uint            `json:"exam_id"`
	ExamTitle string          `json:"exam_title"`
	State     string          `json:"state"`
	StartedAt int64           `json:"started_at"`
	Deadline  int64           `json:"deadline"`
	Questions []questionView  `json:"questions"`
	Answers   map[uint]string `json:"answers"`
}

func toSessionResponse(session *services.AttemptSession) sessionResponse {
	questions := session.Questions()
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			ID:           q.ID,
			Text:         q.Text,
			Type:         q.Type,
			Options:      q.Options,
			CodeTemplate: q.CodeTemplate,
		})
	}

	return sessionResponse{
		SessionID: session.ID,
		ExamID:    session.Exam.ID,
		ExamTitle: session.Exam.Title,
		State:     string(session.State()),
		StartedAt: session.StartedAt,
		Deadline:  session.Deadline,
		Questions: views,
		Answers:   session.Answers(),
	}
}

// ===== HANDLERS =====

// StartAttempt opens a timed session for an exam
// @Summary Start attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body StartAttemptRequest true "Exam to attempt"
// @Success 201 {object} sessionResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	session, err := h.attemptService.Start(c.Request.Context(), req.ExamID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// GetAttempt returns the caller's session with its questions and answers
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	session, err := h.attemptService.GetSession(c.Request.Context(), sessionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// SubmitAnswer records or replaces a single answer
// @Summary Submit answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body SubmitAnswerRequest true "Answer"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/answer [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), sessionID, req.QuestionID, req.Value, caller); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Answer recorded",
	})
}

// SubmitAttempt finalizes the session and returns the scored submission
// @Summary Submit attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.Submission
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	record, err := h.attemptService.Submit(c.Request.Context(), sessionID, caller)
	if err != nil {
		// The attempt may have finalized even when persistence failed;
		// return the record alongside the retryable error.
		if record != nil && services.IsStoreUnavailable(err) {
			c.JSON(http.StatusAccepted, SuccessResponse{
				Message: "Attempt finalized, result pending storage",
				Data:    record,
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetTimeRemaining reports milliseconds until the deadline
func (h *AttemptHandler) GetTimeRemaining(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	remaining, err := h.attemptService.TimeRemaining(c.Request.Context(), sessionID, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":     sessionID,
		"remaining_ms":   remaining.Milliseconds(),
		"remaining_secs": int(remaining.Seconds()),
	})
}

// GetMySubmissions lists the caller's finished attempts
func (h *AttemptHandler) GetMySubmissions(c *gin.Context) {
	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	filters := h.parseSubmissionFilters(c)
	submissions, total, err := h.attemptService.MySubmissions(c.Request.Context(), caller, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Submissions",
		Data: gin.H{
			"submissions": submissions,
			"total":       total,
		},
	})
}

// GetExamSubmissions lists an exam's submissions for its creator
func (h *AttemptHandler) GetExamSubmissions(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	filters := h.parseSubmissionFilters(c)
	submissions, total, err := h.attemptService.ExamSubmissions(c.Request.Context(), examID, caller, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Exam submissions",
		Data: gin.H{
			"submissions": submissions,
			"total":       total,
		},
	})
}

func (h *AttemptHandler) parseSubmissionFilters(c *gin.Context) repositories.SubmissionFilters {
	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)

	return repositories.SubmissionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}
}
