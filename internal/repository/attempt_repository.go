package repository

import (
	"time"

	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Save(attempt *model.Attempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndAssessment(userID, assessmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByUser(userID uint, assessmentID uint) ([]model.Attempt, error) {
	query := r.DB.Where("user_id = ?", userID)
	if assessmentID > 0 {
		query = query.Where("assessment_id = ?", assessmentID)
	}
	var attempts []model.Attempt
	err := query.Order("started_at desc").Find(&attempts).Error
	return attempts, err
}

// TransitionFromInProgress performs the atomic conditional status update
// that guards against double submission: the row moves to newStatus only
// if it is still in_progress. Returns false when another caller won the
// race.
func (r *AttemptRepository) TransitionFromInProgress(attemptID uint, newStatus model.AttemptStatus, submittedAt time.Time) (bool, error) {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":       newStatus,
			"submitted_at": submittedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkReviewed moves a graded attempt to reviewed. Safe to lose the race:
// review is idempotent.
func (r *AttemptRepository) MarkReviewed(attemptID uint) error {
	return r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptGraded).
		Update("status", model.AttemptReviewed).Error
}

// UpsertAnswer writes the answer for (attempt, question ref), replacing
// any prior submission. Last write wins by design.
func (r *AttemptRepository) UpsertAnswer(answer *model.AttemptAnswer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_ref_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer", "time_spent_secs", "is_correct", "score",
			"max_score", "pending_manual", "feedback", "updated_at",
		}),
	}).Create(answer).Error
}

func (r *AttemptRepository) GetAnswers(attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}

func (r *AttemptRepository) FindAnswer(attemptID, questionRefID uint) (*model.AttemptAnswer, error) {
	var ans model.AttemptAnswer
	err := r.DB.Where("attempt_id = ? AND question_ref_id = ?", attemptID, questionRefID).First(&ans).Error
	if err != nil {
		return nil, err
	}
	return &ans, nil
}

func (r *AttemptRepository) SaveAnswer(answer *model.AttemptAnswer) error {
	return r.DB.Save(answer).Error
}

// ListPendingManual returns submitted attempts that still hold answers
// awaiting human grading, optionally filtered by assessment.
func (r *AttemptRepository) ListPendingManual(assessmentID uint) ([]model.Attempt, error) {
	query := r.DB.Where("status IN ? AND pending_manual = ?",
		[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptTimedOut}, true)
	if assessmentID > 0 {
		query = query.Where("assessment_id = ?", assessmentID)
	}
	var attempts []model.Attempt
	err := query.Order("submitted_at asc").Find(&attempts).Error
	return attempts, err
}
