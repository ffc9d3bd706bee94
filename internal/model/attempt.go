package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptTimedOut   AttemptStatus = "timed_out"
	AttemptGraded     AttemptStatus = "graded"
	AttemptReviewed   AttemptStatus = "reviewed"
)

// Writable reports whether answers may still be recorded.
// in_progress is the only writable state.
func (s AttemptStatus) Writable() bool {
	return s == AttemptInProgress
}

// Finished reports whether grading has completed.
func (s AttemptStatus) Finished() bool {
	return s == AttemptGraded || s == AttemptReviewed
}

// swagger:model Attempt
type Attempt struct {
	BaseModel
	AssessmentID uint          `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	UserID       uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	Status       AttemptStatus `gorm:"size:20;default:'in_progress';index" json:"status"`

	StartedAt   time.Time  `json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	GradedAt    *time.Time `json:"gradedAt,omitempty"`

	TotalScore    float64 `json:"totalScore"`
	MaxScore      float64 `json:"maxScore"`
	Percentage    int     `json:"percentage"`
	PendingManual bool    `gorm:"default:false" json:"pendingManual"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Deadline returns the submission deadline, or nil when the assessment
// carries no time limit.
func (a *Attempt) Deadline(timeLimitMinutes int) *time.Time {
	if timeLimitMinutes <= 0 {
		return nil
	}
	d := a.StartedAt.Add(time.Duration(timeLimitMinutes) * time.Minute)
	return &d
}
