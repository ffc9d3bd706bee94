package model

import "encoding/json"

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiSelect  QuestionType = "multi_select"
	QuestionBoolean      QuestionType = "boolean"
	QuestionShortText    QuestionType = "short_text"
	QuestionNumeric      QuestionType = "numeric"
	QuestionMatching     QuestionType = "matching_pairs"
	QuestionOrdering     QuestionType = "ordering"
	QuestionFillBlanks   QuestionType = "fill_in_blanks"
	QuestionFreeText     QuestionType = "free_text"
)

// QuestionBankItem 题库条目。AnswerKey 的 JSON 形状由 Type 决定，
// 永远不通过默认序列化暴露给客户端。
// swagger:model QuestionBankItem
type QuestionBankItem struct {
	BaseModel
	Type        QuestionType    `gorm:"size:50;not null;index" json:"type"`
	Prompt      string          `gorm:"type:text;not null" json:"prompt"`
	Options     json.RawMessage `gorm:"type:json" json:"options,omitempty"`
	AnswerKey   json.RawMessage `gorm:"type:json" json:"-"`
	Points      float64         `gorm:"default:1" json:"points"`
	Explanation string          `gorm:"type:text" json:"-"`
	TopicID     *uint           `gorm:"index" json:"topicId,omitempty"`
	Active      bool            `gorm:"default:true" json:"active"`
}

func (QuestionBankItem) TableName() string {
	return "question_bank_items"
}
