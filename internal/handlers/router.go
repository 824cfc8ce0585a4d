package handlers

import (
	"github.com/adaptiq/assessment-engine/internal/services"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	profileHandler *ProfileHandler
	quizHandler    *QuizHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		profileHandler: NewProfileHandler(serviceManager.Ledger(), serviceManager.Mastery(), serviceManager.Report(), validator, logger),
		quizHandler:    NewQuizHandler(serviceManager.Composer(), serviceManager.Session(), validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ledger routes
		v1.POST("/attempts", hm.profileHandler.RecordAttempt)

		// Profile routes
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/:learner_id", hm.profileHandler.GetProfile)
			profiles.PUT("/:learner_id/goals", hm.profileHandler.SetGoals)
			profiles.GET("/:learner_id/history", hm.quizHandler.GetHistory)

			subjects := profiles.Group("/:learner_id/subjects/:subject")
			{
				subjects.GET("/stats", hm.profileHandler.GetTopicStats)
				subjects.GET("/mastery", hm.profileHandler.GetMastery)
				subjects.GET("/weakest-topics", hm.profileHandler.GetWeakestTopics)
				subjects.GET("/readiness", hm.profileHandler.PredictReadiness)
				subjects.GET("/report.xlsx", hm.profileHandler.ExportReport)
			}
		}

		// Quiz session routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.quizHandler.ComposeQuiz)
			quizzes.POST("/mock", hm.quizHandler.ComposeMockTest)
			quizzes.GET("/:id", hm.quizHandler.GetSession)
			quizzes.GET("/:id/question", hm.quizHandler.GetCurrentQuestion)
			quizzes.POST("/:id/answers", hm.quizHandler.SubmitAnswer)
			quizzes.GET("/:id/summary", hm.quizHandler.GetSummary)
			quizzes.DELETE("/:id", hm.quizHandler.AbandonSession)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "assessment-engine",
		})
	})
}
