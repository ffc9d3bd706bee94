package service

import (
	"errors"
	"math"
	"time"

	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/util"
	"edu_assessment_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MasteryService struct {
	MasteryRepo *repository.MasteryRepository

	// MinQuestions is the floor below which a topic is excluded from
	// weakest/strongest rankings.
	MinQuestions int
}

func NewMasteryService(masteryRepo *repository.MasteryRepository, minQuestions int) *MasteryService {
	if minQuestions <= 0 {
		minQuestions = 3
	}
	return &MasteryService{MasteryRepo: masteryRepo, MinQuestions: minQuestions}
}

// computeMasteryPercent derives the mastery percentage from raw counts.
func computeMasteryPercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// RecomputeTopicMastery rebuilds one (user, topic) mastery row from the
// full graded answer history. The computation reads everything and
// replaces the row, so replays and out-of-order triggers converge to the
// same state.
func (s *MasteryService) RecomputeTopicMastery(userID, topicID uint) error {
	stats, err := s.MasteryRepo.TopicAnswerStats(userID, topicID)
	if err != nil {
		return err
	}

	return s.MasteryRepo.Upsert(&model.TopicMastery{
		UserID:         userID,
		TopicID:        topicID,
		TotalQuestions: stats.TotalQuestions,
		CorrectAnswers: stats.CorrectAnswers,
		MasteryPercent: computeMasteryPercent(stats.CorrectAnswers, stats.TotalQuestions),
		LastAttemptAt:  time.Now(),
	})
}

// UpdateMasteryAfterAttempt recomputes mastery for every topic the graded
// attempt touched. Per-topic failures are logged and do not stop the
// remaining topics.
func (s *MasteryService) UpdateMasteryAfterAttempt(userID, attemptID uint) error {
	topicIDs, err := s.MasteryRepo.TopicsTouchedByAttempt(attemptID)
	if err != nil {
		return err
	}

	var failed int
	for _, topicID := range topicIDs {
		if err := s.RecomputeTopicMastery(userID, topicID); err != nil {
			failed++
			logger.Log.Error("mastery recompute failed",
				zap.Uint("userId", userID),
				zap.Uint("topicId", topicID),
				zap.Error(err))
		}
	}
	if failed > 0 {
		return errors.New("mastery recompute incomplete")
	}
	return nil
}

func (s *MasteryService) GetUserMastery(userID uint) ([]model.TopicMastery, error) {
	return s.MasteryRepo.ListByUser(userID)
}

// OverallMastery 用户在全部知识点上的总体掌握度
type OverallMastery struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	MasteryPercent int `json:"masteryPercent"`
	TopicsTracked  int `json:"topicsTracked"`
}

// GetOverallMastery aggregates the user's mastery rows into one figure:
// correct answers over total questions across every topic.
func (s *MasteryService) GetOverallMastery(userID uint) (*OverallMastery, error) {
	rows, err := s.MasteryRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	overall := &OverallMastery{}
	for _, row := range rows {
		if row.TotalQuestions == 0 {
			continue
		}
		overall.TotalQuestions += row.TotalQuestions
		overall.CorrectAnswers += row.CorrectAnswers
		overall.TopicsTracked++
	}
	overall.MasteryPercent = computeMasteryPercent(overall.CorrectAnswers, overall.TotalQuestions)
	return overall, nil
}

func (s *MasteryService) WeakestTopics(userID uint, limit int) ([]model.TopicMastery, error) {
	return s.MasteryRepo.WeakestTopics(userID, s.MinQuestions, limit)
}

func (s *MasteryService) StrongestTopics(userID uint, limit int) ([]model.TopicMastery, error) {
	return s.MasteryRepo.StrongestTopics(userID, s.MinQuestions, limit)
}

// GetTopicMastery returns one user's mastery for one topic, verifying the
// topic exists first.
func (s *MasteryService) GetTopicMastery(userID, topicID uint) (*model.TopicMastery, error) {
	if _, err := s.MasteryRepo.FindTopic(topicID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTopicNotFound
		}
		return nil, err
	}
	rows, err := s.MasteryRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].TopicID == topicID {
			return &rows[i], nil
		}
	}
	// No answers for this topic yet.
	return &model.TopicMastery{UserID: userID, TopicID: topicID}, nil
}
