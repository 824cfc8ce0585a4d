package handlers

import (
	"errors"
	"net/http"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/adaptiq/assessment-engine/internal/services"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	BaseHandler
	composerService services.ComposerService
	sessionService  services.SessionService
	validator       *utils.Validator
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

func NewQuizHandler(
	composerService services.ComposerService,
	sessionService services.SessionService,
	validator *utils.Validator,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:     NewBaseHandler(logger),
		composerService: composerService,
		sessionService:  sessionService,
		validator:       validator,
	}
}

// ComposeQuiz opens a reinforcement quiz session
// @Summary Compose quiz
// @Description Builds a quiz blending the seed topic with the learner's weakest topics
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.ComposeQuizRequest true "Quiz parameters"
// @Success 201 {object} models.QuizSession
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) ComposeQuiz(c *gin.Context) {
	var req services.ComposeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Composing quiz", "learner_id", req.LearnerID, "subject", req.Subject, "seed_topic", req.SeedTopic)

	session, err := h.composerService.ComposeQuiz(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// ComposeMockTest opens an exam-style mock test session
// @Summary Compose mock test
// @Description Builds a mock test with a fixed question type distribution
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body services.ComposeQuizRequest true "Mock test parameters"
// @Success 201 {object} models.QuizSession
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /quizzes/mock [post]
func (h *QuizHandler) ComposeMockTest(c *gin.Context) {
	var req services.ComposeQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Composing mock test", "learner_id", req.LearnerID, "subject", req.Subject)

	session, err := h.composerService.ComposeMockTest(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the raw session snapshot
// @Summary Get session
// @Tags quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.QuizSession
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetCurrentQuestion returns the question awaiting an answer
// @Summary Get current question
// @Description The correct answer and explanation are withheld until grading
// @Tags quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.CurrentQuestion
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/question [get]
func (h *QuizHandler) GetCurrentQuestion(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	question, err := h.sessionService.GetCurrentQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// SubmitAnswer grades the answer to the current question and advances the session
// @Summary Submit answer
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/answers [post]
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
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

	h.LogRequest(c, "Submitting answer", "session_id", sessionID)

	response, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, req.Answer)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSummary returns the session score breakdown
// @Summary Get session summary
// @Tags quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionSummary
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /quizzes/{id}/summary [get]
func (h *QuizHandler) GetSummary(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	summary, err := h.sessionService.GetSummary(c.Request.Context(), sessionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AbandonSession discards a live session without scoring the remainder
// @Summary Abandon session
// @Tags quizzes
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) AbandonSession(c *gin.Context) {
	sessionID := ParseStringIDParam(c, "id")
	if sessionID == "" {
		return
	}

	h.LogRequest(c, "Abandoning quiz session", "session_id", sessionID)

	if err := h.sessionService.AbandonSession(c.Request.Context(), sessionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Quiz session abandoned",
	})
}

// GetHistory lists a learner's archived quiz records
// @Summary Get quiz history
// @Tags quizzes
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param subject query string false "Filter by subject"
// @Param kind query string false "Filter by quiz kind"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/history [get]
func (h *QuizHandler) GetHistory(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}

	filters := repositories.RecordFilters{
		Limit:     ParseIntQuery(c, "limit", 20),
		Offset:    ParseIntQuery(c, "offset", 0),
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if kind := c.Query("kind"); kind != "" {
		quizKind := models.QuizKind(kind)
		filters.Kind = &quizKind
	}

	records, total, err := h.sessionService.GetHistory(c.Request.Context(), learnerID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   filters.Limit,
		"offset":  filters.Offset,
	})
}

// handleServiceError converts service errors to appropriate HTTP responses
func (h *QuizHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case services.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsInvalidState(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	case services.IsGenerationFailure(err):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Question generation is currently unavailable",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
