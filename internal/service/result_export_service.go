package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/pkg/logger"

	"go.uber.org/zap"
)

// exportedResult is the document shape handed to the reporting side. It
// carries the graded summary only, never the answer keys.
type exportedResult struct {
	AttemptID    uint                   `json:"attemptId"`
	AssessmentID uint                   `json:"assessmentId"`
	UserID       uint                   `json:"userId"`
	Status       model.AttemptStatus    `json:"status"`
	TotalScore   float64                `json:"totalScore"`
	MaxScore     float64                `json:"maxScore"`
	Percentage   int                    `json:"percentage"`
	SubmittedAt  *time.Time             `json:"submittedAt,omitempty"`
	GradedAt     *time.Time             `json:"gradedAt,omitempty"`
	Answers      []exportedAnswerResult `json:"answers"`
	ExportedAt   time.Time              `json:"exportedAt"`
}

type exportedAnswerResult struct {
	QuestionRefID uint    `json:"questionRefId"`
	IsCorrect     bool    `json:"isCorrect"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"maxScore"`
}

// ResultExportService pushes graded attempt summaries to object storage
// for downstream reporting. Export is best-effort: failures are logged and
// never surface to the grading flow.
type ResultExportService struct {
	Storage *StorageService
	Enabled bool
}

func NewResultExportService(storage *StorageService, enabled bool) *ResultExportService {
	return &ResultExportService{Storage: storage, Enabled: enabled}
}

func (s *ResultExportService) ExportAttempt(attempt *model.Attempt, answers []model.AttemptAnswer) {
	if !s.Enabled || s.Storage == nil {
		return
	}
	go s.export(attempt, answers)
}

func (s *ResultExportService) export(attempt *model.Attempt, answers []model.AttemptAnswer) {
	doc := exportedResult{
		AttemptID:    attempt.ID,
		AssessmentID: attempt.AssessmentID,
		UserID:       attempt.UserID,
		Status:       attempt.Status,
		TotalScore:   attempt.TotalScore,
		MaxScore:     attempt.MaxScore,
		Percentage:   attempt.Percentage,
		SubmittedAt:  attempt.SubmittedAt,
		GradedAt:     attempt.GradedAt,
		ExportedAt:   time.Now(),
	}
	for _, a := range answers {
		doc.Answers = append(doc.Answers, exportedAnswerResult{
			QuestionRefID: a.QuestionRefID,
			IsCorrect:     a.IsCorrect,
			Score:         a.Score,
			MaxScore:      a.MaxScore,
		})
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		logger.Log.Error("result export marshal failed",
			zap.Uint("attemptId", attempt.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	objectName := fmt.Sprintf("attempts/%d/%d.json", attempt.UserID, attempt.ID)
	if _, err := s.Storage.Upload(ctx, objectName, bytes.NewReader(payload), int64(len(payload)), "application/json"); err != nil {
		logger.Log.Error("result export upload failed",
			zap.Uint("attemptId", attempt.ID), zap.Error(err))
		return
	}
	logger.Log.Info("attempt result exported",
		zap.Uint("attemptId", attempt.ID), zap.String("object", objectName))
}
