package repository

import (
	"time"

	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
)

// AssessmentRepository is the read-only view onto assessment definitions.
type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

// FindByID loads a definition with its sections and question references,
// both in declared order.
func (r *AssessmentRepository) FindByID(id uint) (*model.AssessmentDefinition, error) {
	var a model.AssessmentDefinition
	err := r.DB.
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc")
		}).
		First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListPublished returns the definitions a student may see right now.
func (r *AssessmentRepository) ListPublished(now time.Time, page, limit int) ([]model.AssessmentDefinition, int64, error) {
	query := r.DB.Model(&model.AssessmentDefinition{}).
		Where("status = ?", model.AssessmentPublished).
		Where("available_from IS NULL OR available_from <= ?", now).
		Where("available_until IS NULL OR available_until >= ?", now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var as []model.AssessmentDefinition
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}
