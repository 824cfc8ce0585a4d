package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/adaptiq/assessment-engine/internal/models"
	"github.com/adaptiq/assessment-engine/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ReportService renders a learner's performance into a downloadable XLSX
// workbook: mastery overview, per-topic breakdown, and quiz history.
type ReportService interface {
	ExportPerformanceReport(ctx context.Context, learnerID, subject string) ([]byte, error)
}

type reportService struct {
	mastery  MasteryService
	sessions SessionService
	logger   *slog.Logger
}

func NewReportService(mastery MasteryService, sessions SessionService, logger *slog.Logger) ReportService {
	return &reportService{
		mastery:  mastery,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *reportService) ExportPerformanceReport(ctx context.Context, learnerID, subject string) ([]byte, error) {
	report, err := s.mastery.GetMastery(ctx, learnerID, subject)
	if err != nil {
		return nil, err
	}

	records, _, err := s.sessions.GetHistory(ctx, learnerID, repositories.RecordFilters{
		Subject:   &subject,
		SortBy:    "created_at",
		SortOrder: "desc",
	})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeOverviewSheet(f, report); err != nil {
		return nil, err
	}
	if err := s.writeTopicsSheet(f, report.TopicAccuracy); err != nil {
		return nil, err
	}
	if err := s.writeHistorySheet(f, records); err != nil {
		return nil, err
	}

	// drop the default sheet created by NewFile
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("performance report exported",
		"learner_id", learnerID,
		"subject", subject,
		"history_rows", len(records))
	return buf.Bytes(), nil
}

func (s *reportService) writeOverviewSheet(f *excelize.File, report *MasteryReport) error {
	sheetName := "Overview"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	rows := [][]interface{}{
		{"Learner", report.LearnerID},
		{"Subject", report.Subject},
		{"Study Streak (days)", report.StreakDays},
		{"Average Accuracy (%)", report.AverageAccuracy},
		{"Syllabus Coverage (%)", report.CoveragePercent},
		{"Estimated Hours Spent", report.HoursSpent},
		{"Questions Answered", report.TotalAttempts},
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+1)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}

func (s *reportService) writeTopicsSheet(f *excelize.File, topicAccuracy map[string]float64) error {
	sheetName := "Topics"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Topic", "Accuracy (%)"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	// weakest topics first, the reader's natural priority order
	topics := make([]string, 0, len(topicAccuracy))
	for topic := range topicAccuracy {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topicAccuracy[topics[i]] != topicAccuracy[topics[j]] {
			return topicAccuracy[topics[i]] < topicAccuracy[topics[j]]
		}
		return topics[i] < topics[j]
	})

	for rowIndex, topic := range topics {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex+2), topic)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex+2), topicAccuracy[topic])
	}
	return nil
}

func (s *reportService) writeHistorySheet(f *excelize.File, records []*models.QuizRecord) error {
	sheetName := "History"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Date", "Kind", "Seed Topic", "Score", "Total Questions", "Percentage"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, record := range records {
		percentage := 0.0
		if record.TotalQuestions > 0 {
			percentage = record.Score / float64(record.TotalQuestions) * 100
		}
		row := []interface{}{
			record.CreatedAt.Format("2006-01-02 15:04:05"),
			string(record.Kind),
			record.SeedTopic,
			record.Score,
			record.TotalQuestions,
			percentage,
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}
	return nil
}
