package model

import "time"

type AssessmentStatus string

const (
	AssessmentDraft     AssessmentStatus = "draft"
	AssessmentPublished AssessmentStatus = "published"
	AssessmentArchived  AssessmentStatus = "archived"
)

// swagger:model AssessmentDefinition
type AssessmentDefinition struct {
	BaseModel
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Status      AssessmentStatus `gorm:"size:20;default:'draft';index" json:"status"`

	TimeLimit   int `gorm:"default:0" json:"timeLimit"`   // Minutes, 0 = unlimited
	MaxAttempts int `gorm:"default:0" json:"maxAttempts"` // 0 = unlimited

	ShuffleQuestions bool `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions   bool `gorm:"default:false" json:"shuffleOptions"`

	ShowResultsImmediately bool `gorm:"default:true" json:"showResultsImmediately"`
	ShowCorrectAnswers     bool `gorm:"default:false" json:"showCorrectAnswers"`
	ShowExplanations       bool `gorm:"default:false" json:"showExplanations"`

	AvailableFrom  *time.Time `json:"availableFrom,omitempty"`
	AvailableUntil *time.Time `json:"availableUntil,omitempty"`

	Sections []AssessmentSection `gorm:"foreignKey:AssessmentID" json:"sections,omitempty"`
}

func (AssessmentDefinition) TableName() string {
	return "assessment_definitions"
}

// AvailableAt reports whether the assessment window contains t.
// Either bound may be absent, meaning unbounded on that side.
func (a *AssessmentDefinition) AvailableAt(t time.Time) bool {
	if a.AvailableFrom != nil && t.Before(*a.AvailableFrom) {
		return false
	}
	if a.AvailableUntil != nil && t.After(*a.AvailableUntil) {
		return false
	}
	return true
}

// swagger:model AssessmentSection
type AssessmentSection struct {
	BaseModel
	AssessmentID uint   `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	Title        string `gorm:"size:255" json:"title"`
	Order        int    `gorm:"default:0" json:"order"`

	Questions []SectionQuestion `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (AssessmentSection) TableName() string {
	return "assessment_sections"
}

// SectionQuestion 小节内对题库条目的有序引用，可覆盖分值。
// swagger:model SectionQuestion
type SectionQuestion struct {
	BaseModel
	SectionID      uint     `gorm:"index;type:bigint unsigned" json:"sectionId"`
	QuestionID     uint     `gorm:"index;type:bigint unsigned" json:"questionId"`
	Order          int      `gorm:"default:0" json:"order"`
	PointsOverride *float64 `json:"pointsOverride,omitempty"`
}

func (SectionQuestion) TableName() string {
	return "section_questions"
}

// EffectivePoints resolves the point value for this reference.
func (q *SectionQuestion) EffectivePoints(item *QuestionBankItem) float64 {
	if q.PointsOverride != nil {
		return *q.PointsOverride
	}
	return item.Points
}
