package repository

import (
	"edu_assessment_backend/internal/model"

	"gorm.io/gorm"
)

// QuestionBankRepository is the read-only view onto the question catalog.
// The engine never mutates bank items; authoring belongs to a separate
// collaborator.
type QuestionBankRepository struct {
	DB *gorm.DB
}

func NewQuestionBankRepository(db *gorm.DB) *QuestionBankRepository {
	return &QuestionBankRepository{DB: db}
}

// FindByIDs returns the catalog items for the given ids keyed by id.
// Missing or deactivated ids are simply absent from the map.
func (r *QuestionBankRepository) FindByIDs(ids []uint) (map[uint]model.QuestionBankItem, error) {
	result := make(map[uint]model.QuestionBankItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var items []model.QuestionBankItem
	if err := r.DB.Where("id IN ? AND active = ?", ids, true).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.ID] = item
	}
	return result, nil
}
