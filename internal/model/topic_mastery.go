package model

import "time"

// TopicMastery 每用户每主题的掌握度。总是从完整作答历史重算，
// 不做增量更新，重复重算结果一致。
type TopicMastery struct {
	BaseModel
	UserID  uint `gorm:"uniqueIndex:idx_user_topic;type:bigint unsigned" json:"userId"`
	TopicID uint `gorm:"uniqueIndex:idx_user_topic;type:bigint unsigned" json:"topicId"`

	TotalQuestions int       `gorm:"default:0" json:"totalQuestions"`
	CorrectAnswers int       `gorm:"default:0" json:"correctAnswers"`
	MasteryPercent int       `gorm:"default:0" json:"masteryPercent"`
	LastAttemptAt  time.Time `json:"lastAttemptAt"`
}

func (TopicMastery) TableName() string {
	return "topic_masteries"
}
