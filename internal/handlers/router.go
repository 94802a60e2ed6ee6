package handlers

import (
	"github.com/bhoraniaarshadali/exam-portal-service/internal/identity"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/services"
	"github.com/bhoraniaarshadali/exam-portal-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	examHandler    *ExamHandler
	attemptHandler *AttemptHandler
	roleHandler    *RoleHandler

	provider identity.Provider
	profiles services.ProfileService
	logger   utils.Logger
}

func NewHandlerManager(
	examService services.ExamService,
	attemptService services.AttemptService,
	exportService services.ExportService,
	gatekeeper services.GatekeeperService,
	profiles services.ProfileService,
	provider identity.Provider,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		examHandler:    NewExamHandler(examService, exportService, logger),
		attemptHandler: NewAttemptHandler(attemptService, logger),
		roleHandler:    NewRoleHandler(gatekeeper, logger),
		provider:       provider,
		profiles:       profiles,
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exam-portal-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.provider, hm.profiles, hm.logger))
	{
		exams := v1.Group("/exams")
		{
			exams.POST("", hm.examHandler.CreateExam)
			exams.GET("", hm.examHandler.ListActiveExams)
			exams.GET("/mine", hm.examHandler.GetMyExams)
			exams.GET("/:id", hm.examHandler.GetExam)
			exams.POST("/:id/questions", hm.examHandler.AddQuestion)
			exams.GET("/:id/questions", hm.examHandler.GetQuestions)
			exams.GET("/:id/results/export", hm.examHandler.ExportResults)
			exams.GET("/:id/questions/export", hm.examHandler.ExportQuestions)
			exams.GET("/:id/submissions", hm.attemptHandler.GetExamSubmissions)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/time-remaining", hm.attemptHandler.GetTimeRemaining)
		}

		submissions := v1.Group("/submissions")
		{
			submissions.GET("/mine", hm.attemptHandler.GetMySubmissions)
		}

		roles := v1.Group("/roles")
		{
			roles.POST("", hm.roleHandler.GrantRole)
			roles.GET("/check/:role", hm.roleHandler.CheckRole)
		}
	}
}
