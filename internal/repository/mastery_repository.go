package repository

import (
	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// TopicAnswerStats are the raw counts a mastery row is derived from.
type TopicAnswerStats struct {
	TotalQuestions int
	CorrectAnswers int
}

var finishedStatuses = []model.AttemptStatus{model.AttemptGraded, model.AttemptReviewed}

// TopicAnswerStats scans the full graded answer history of one user for
// one topic, across every finished attempt. Answers still pending manual
// grading are excluded.
func (r *MasteryRepository) TopicAnswerStats(userID, topicID uint) (*TopicAnswerStats, error) {
	var row struct {
		Total   int64
		Correct int64
	}
	err := r.DB.Model(&model.AttemptAnswer{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN attempt_answers.is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Joins("JOIN attempts ON attempts.id = attempt_answers.attempt_id").
		Joins("JOIN section_questions ON section_questions.id = attempt_answers.question_ref_id").
		Joins("JOIN question_bank_items ON question_bank_items.id = section_questions.question_id").
		Where("attempts.user_id = ?", userID).
		Where("attempts.status IN ?", finishedStatuses).
		Where("attempt_answers.pending_manual = ?", false).
		Where("question_bank_items.topic_id = ?", topicID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &TopicAnswerStats{
		TotalQuestions: int(row.Total),
		CorrectAnswers: int(row.Correct),
	}, nil
}

// TopicsTouchedByAttempt returns the distinct topic ids referenced by the
// answers of one attempt.
func (r *MasteryRepository) TopicsTouchedByAttempt(attemptID uint) ([]uint, error) {
	var topicIDs []uint
	err := r.DB.Model(&model.AttemptAnswer{}).
		Distinct("question_bank_items.topic_id").
		Joins("JOIN section_questions ON section_questions.id = attempt_answers.question_ref_id").
		Joins("JOIN question_bank_items ON question_bank_items.id = section_questions.question_id").
		Where("attempt_answers.attempt_id = ?", attemptID).
		Where("question_bank_items.topic_id IS NOT NULL").
		Pluck("question_bank_items.topic_id", &topicIDs).Error
	return topicIDs, err
}

// Upsert writes the mastery row keyed by (user, topic). Recomputation is
// idempotent, so the write unconditionally replaces the derived fields.
func (r *MasteryRepository) Upsert(mastery *model.TopicMastery) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "topic_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_questions", "correct_answers", "mastery_percent",
			"last_attempt_at", "updated_at",
		}),
	}).Create(mastery).Error
}

func (r *MasteryRepository) ListByUser(userID uint) ([]model.TopicMastery, error) {
	var rows []model.TopicMastery
	err := r.DB.Where("user_id = ?", userID).Order("mastery_percent desc").Find(&rows).Error
	return rows, err
}

// WeakestTopics lists the user's lowest mastery rows, ignoring topics with
// too few answered questions to be meaningful.
func (r *MasteryRepository) WeakestTopics(userID uint, minQuestions, limit int) ([]model.TopicMastery, error) {
	var rows []model.TopicMastery
	err := r.DB.Where("user_id = ? AND total_questions >= ?", userID, minQuestions).
		Order("mastery_percent asc").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *MasteryRepository) StrongestTopics(userID uint, minQuestions, limit int) ([]model.TopicMastery, error) {
	var rows []model.TopicMastery
	err := r.DB.Where("user_id = ? AND total_questions >= ?", userID, minQuestions).
		Order("mastery_percent desc").Limit(limit).Find(&rows).Error
	return rows, err
}

func (r *MasteryRepository) FindTopic(topicID uint) (*model.Topic, error) {
	var t model.Topic
	if err := r.DB.First(&t, topicID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
