package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/adaptiq/assessment-engine/internal/services"
	"github.com/adaptiq/assessment-engine/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	BaseHandler
	ledgerService  services.LedgerService
	masteryService services.MasteryService
	reportService  services.ReportService
	validator      *utils.Validator
}

func NewProfileHandler(
	ledgerService services.LedgerService,
	masteryService services.MasteryService,
	reportService services.ReportService,
	validator *utils.Validator,
	logger utils.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		ledgerService:  ledgerService,
		masteryService: masteryService,
		reportService:  reportService,
		validator:      validator,
	}
}

// RecordAttempt appends a graded attempt to the performance ledger
// @Summary Record attempt
// @Description Records a single graded answer against the learner's ledger
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.RecordAttemptRequest true "Attempt data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /attempts [post]
func (h *ProfileHandler) RecordAttempt(c *gin.Context) {
	var req services.RecordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Recording attempt", "learner_id", req.LearnerID, "subject", req.Subject, "topic", req.Topic)

	if err := h.ledgerService.RecordAttempt(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Attempt recorded successfully",
	})
}

// GetProfile returns a learner's performance profile
// @Summary Get profile
// @Tags profiles
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Success 200 {object} models.PerformanceProfile
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{learner_id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}

	profile, err := h.ledgerService.GetProfile(c.Request.Context(), learnerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// SetGoals updates a learner's target score and exam date
// @Summary Set goals
// @Tags profiles
// @Accept json
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param goals body services.SetGoalsRequest true "Goal data"
// @Success 200 {object} models.PerformanceProfile
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/goals [put]
func (h *ProfileHandler) SetGoals(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}

	var req services.SetGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.LearnerID = learnerID

	h.LogRequest(c, "Setting learner goals", "learner_id", learnerID)

	profile, err := h.ledgerService.SetGoals(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetTopicStats returns the per-topic attempt rollup for one subject
// @Summary Get topic stats
// @Tags profiles
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param subject path string true "Subject"
// @Success 200 {object} map[string]models.TopicStat
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/subjects/{subject}/stats [get]
func (h *ProfileHandler) GetTopicStats(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}
	subject := ParseStringIDParam(c, "subject")
	if subject == "" {
		return
	}

	stats, err := h.ledgerService.GetTopicStats(c.Request.Context(), learnerID, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetMastery returns the full mastery report for one subject
// @Summary Get mastery report
// @Description Streak, accuracy, coverage, study time and per-topic breakdown
// @Tags profiles
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param subject path string true "Subject"
// @Success 200 {object} services.MasteryReport
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/subjects/{subject}/mastery [get]
func (h *ProfileHandler) GetMastery(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}
	subject := ParseStringIDParam(c, "subject")
	if subject == "" {
		return
	}

	report, err := h.masteryService.GetMastery(c.Request.Context(), learnerID, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetWeakestTopics ranks the learner's practiced topics by ascending accuracy
// @Summary Get weakest topics
// @Tags profiles
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param subject path string true "Subject"
// @Param limit query int false "Maximum topics to return"
// @Param min_attempts query int false "Minimum attempts for a topic to rank"
// @Success 200 {object} []services.WeakTopic
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/subjects/{subject}/weakest-topics [get]
func (h *ProfileHandler) GetWeakestTopics(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}
	subject := ParseStringIDParam(c, "subject")
	if subject == "" {
		return
	}

	req := services.WeakTopicsRequest{
		LearnerID:   learnerID,
		Subject:     subject,
		Limit:       ParseIntQuery(c, "limit", 0),
		MinAttempts: ParseIntQuery(c, "min_attempts", 0),
	}

	weak, err := h.masteryService.GetWeakestTopics(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if weak == nil {
		weak = []services.WeakTopic{}
	}

	c.JSON(http.StatusOK, weak)
}

// PredictReadiness returns the exam readiness forecast
// @Summary Predict readiness
// @Description Forecasts the learner's likely exam score from their ledger
// @Tags profiles
// @Produce json
// @Param learner_id path string true "Learner ID"
// @Param subject path string true "Subject"
// @Success 200 {object} advisor.Forecast
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/subjects/{subject}/readiness [get]
func (h *ProfileHandler) PredictReadiness(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}
	subject := ParseStringIDParam(c, "subject")
	if subject == "" {
		return
	}

	h.LogRequest(c, "Predicting readiness", "learner_id", learnerID, "subject", subject)

	forecast, err := h.masteryService.PredictReadiness(c.Request.Context(), learnerID, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

// ExportReport streams the learner's performance workbook as XLSX
// @Summary Export performance report
// @Tags profiles
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param learner_id path string true "Learner ID"
// @Param subject path string true "Subject"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse
// @Router /profiles/{learner_id}/subjects/{subject}/report.xlsx [get]
func (h *ProfileHandler) ExportReport(c *gin.Context) {
	learnerID := ParseStringIDParam(c, "learner_id")
	if learnerID == "" {
		return
	}
	subject := ParseStringIDParam(c, "subject")
	if subject == "" {
		return
	}

	h.LogRequest(c, "Exporting performance report", "learner_id", learnerID, "subject", subject)

	data, err := h.reportService.ExportPerformanceReport(c.Request.Context(), learnerID, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("performance_%s_%s.xlsx", learnerID, subject)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// handleServiceError converts service errors to appropriate HTTP responses
func (h *ProfileHandler) handleServiceError(c *gin.Context, err error) {
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
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
