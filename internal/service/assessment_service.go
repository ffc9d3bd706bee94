package service

import (
	"errors"
	"time"

	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/util"

	"gorm.io/gorm"
)

type AssessmentService struct {
	AssessmentRepo *repository.AssessmentRepository
}

func NewAssessmentService(assessmentRepo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{AssessmentRepo: assessmentRepo}
}

// ListAvailable returns the published, in-window assessments a student may
// start right now.
func (s *AssessmentService) ListAvailable(page, limit int) ([]model.AssessmentDefinition, int64, error) {
	return s.AssessmentRepo.ListPublished(time.Now(), page, limit)
}

// GetAssessment returns the definition without question content. Students
// only see published, in-window definitions.
func (s *AssessmentService) GetAssessment(id uint, role model.UserRole) (*model.AssessmentDefinition, error) {
	assessment, err := s.AssessmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}
	if !role.Privileged() {
		if assessment.Status != model.AssessmentPublished || !assessment.AvailableAt(time.Now()) {
			return nil, util.ErrAssessmentNotAvailable
		}
	}
	return assessment, nil
}
