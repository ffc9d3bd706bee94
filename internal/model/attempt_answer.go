package model

import "encoding/json"

// AttemptAnswer 一次尝试中单题的作答记录。
// (attempt_id, question_ref_id) 唯一，后写覆盖先写。
type AttemptAnswer struct {
	BaseModel
	AttemptID     uint            `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"attemptId"`
	QuestionRefID uint            `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"questionRefId"`
	Answer        json.RawMessage `gorm:"type:json" json:"answer,omitempty"`
	TimeSpentSecs int             `gorm:"default:0" json:"timeSpentSeconds"`

	// Set at grading time.
	IsCorrect     bool    `gorm:"default:false" json:"isCorrect"`
	Score         float64 `gorm:"default:0" json:"score"`
	MaxScore      float64 `gorm:"default:0" json:"maxScore"`
	PendingManual bool    `gorm:"default:false" json:"pendingManual"`
	Feedback      string  `gorm:"type:text" json:"feedback,omitempty"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
