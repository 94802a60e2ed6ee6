package handlers

import (
	"net/http"
	"time"

	"github.com/bhoraniaarshadali/exam-portal-service/internal/repositories"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamHandler struct {
	BaseHandler
	examService   services.ExamService
	exportService services.ExportService
}

func NewExamHandler(
	examService services.ExamService,
	exportService services.ExportService,
	logger utils.Logger,
) *ExamHandler {
	return &ExamHandler{
		BaseHandler:   NewBaseHandler(logger),
		examService:   examService,
		exportService: exportService,
	}
}

// CreateExam schedules a new exam
// @Summary Create exam
// @Description Schedules a new exam with an attempt window and duration
// @Tags exams
// @Accept json
// @Produce json
// @Param exam body services.CreateExamRequest true "Exam data"
// @Success 201 {object} models.Exam
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams [post]
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamRequest
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

	exam, err := h.examService.Create(c.Request.Context(), &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// ListActiveExams returns exams whose attempt window has not closed
// @Summary List active exams
// @Tags exams
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /exams [get]
func (h *ExamHandler) ListActiveExams(c *gin.Context) {
	exams, err := h.examService.ListActive(c.Request.Context(), time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Active exams",
		Data:    exams,
	})
}

// GetExam retrieves an exam by ID
// @Summary Get exam
// @Tags exams
// @Produce json
// @Param id path uint true "Exam ID"
// @Success 200 {object} models.Exam
// @Failure 404 {object} ErrorResponse
// @Router /exams/{id} [get]
func (h *ExamHandler) GetExam(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// GetMyExams returns exams created by the caller
func (h *ExamHandler) GetMyExams(c *gin.Context) {
	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 20)
	filters := repositories.ExamFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	}

	exams, total, err := h.examService.GetByCreator(c.Request.Context(), caller, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Exams by creator",
		Data: gin.H{
			"exams": exams,
			"total": total,
			"page":  page,
			"size":  size,
		},
	})
}

// AddQuestion appends a question to an exam the caller created
// @Summary Add question
// @Tags exams
// @Accept json
// @Produce json
// @Param id path uint true "Exam ID"
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /exams/{id}/questions [post]
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.CreateQuestionRequest
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

	question, err := h.examService.AddQuestion(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestions lists an exam's questions with the answer key; creator only
func (h *ExamHandler) GetQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	questions, err := h.examService.GetQuestions(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Exam questions",
		Data:    questions,
	})
}

// ExportResults streams an xlsx of the exam's submissions
// @Summary Export exam results
// @Tags exams
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Exam ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /exams/{id}/results/export [get]
func (h *ExamHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	data, err := h.exportService.ExportExamResults(c.Request.Context(), id, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportQuestions streams the exam's question sheet as csv or xlsx
func (h *ExamHandler) ExportQuestions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	caller := h.requireIdentity(c)
	if caller == nil {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "csv":
		data, err := h.exportService.ExportExamQuestionsToCSV(c.Request.Context(), id, caller)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := h.exportService.ExportExamQuestionsToExcel(c.Request.Context(), id, caller)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="questions.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported export format",
			Details: format,
		})
	}
}
