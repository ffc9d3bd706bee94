package service

import (
	"encoding/json"
	"math/rand"

	"edu_assessment_backend/internal/model"
)

// RenderOptions controls the safe projection of a question for an open
// attempt.
type RenderOptions struct {
	ShuffleOptions bool
	IncludePoints  bool
}

// SafeQuestion is the view of a catalog item handed to a student while an
// attempt is in progress. It never carries the answer key or explanation,
// regardless of caller role.
type SafeQuestion struct {
	QuestionRefID uint               `json:"questionRefId"`
	Type          model.QuestionType `json:"type"`
	Prompt        string             `json:"prompt"`
	Options       json.RawMessage    `json:"options,omitempty"`
	Points        *float64           `json:"points,omitempty"`
	Order         int                `json:"order"`
}

// ReviewQuestion is the per-question view returned once an attempt has
// left in_progress. Correct answer and explanation are present only when
// visibility rules allow.
type ReviewQuestion struct {
	QuestionRefID uint               `json:"questionRefId"`
	Type          model.QuestionType `json:"type"`
	Prompt        string             `json:"prompt"`
	Options       json.RawMessage    `json:"options,omitempty"`
	Order         int                `json:"order"`

	SubmittedAnswer json.RawMessage `json:"submittedAnswer,omitempty"`
	Answered        bool            `json:"answered"`
	IsCorrect       bool            `json:"isCorrect"`
	Score           float64         `json:"score"`
	MaxScore        float64         `json:"maxScore"`
	PendingManual   bool            `json:"pendingManual"`
	Feedback        string          `json:"feedback,omitempty"`

	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
}

// RenderForAttempt projects a catalog item into its safe in-progress view.
func RenderForAttempt(item *model.QuestionBankItem, ref *model.SectionQuestion, opts RenderOptions) SafeQuestion {
	q := SafeQuestion{
		QuestionRefID: ref.ID,
		Type:          item.Type,
		Prompt:        item.Prompt,
		Options:       item.Options,
		Order:         ref.Order,
	}
	if opts.ShuffleOptions {
		q.Options = shuffleJSONArray(item.Options)
	}
	if opts.IncludePoints {
		points := ref.EffectivePoints(item)
		q.Points = &points
	}
	return q
}

// RenderForReview projects a catalog item plus its graded answer into the
// post-attempt view. answer may be nil when the question went unanswered
// and was never zero-filled.
func RenderForReview(item *model.QuestionBankItem, ref *model.SectionQuestion, answer *model.AttemptAnswer, role model.UserRole, assessment *model.AssessmentDefinition) ReviewQuestion {
	q := ReviewQuestion{
		QuestionRefID: ref.ID,
		Type:          item.Type,
		Prompt:        item.Prompt,
		Options:       item.Options,
		Order:         ref.Order,
		MaxScore:      ref.EffectivePoints(item),
	}

	privileged := role.Privileged()
	if answer != nil {
		q.SubmittedAnswer = answer.Answer
		q.Answered = len(answer.Answer) > 0
		q.PendingManual = answer.PendingManual
		q.MaxScore = answer.MaxScore
		// Per-question outcomes stay hidden from students while the
		// assessment withholds immediate results.
		if privileged || assessment.ShowResultsImmediately {
			q.IsCorrect = answer.IsCorrect
			q.Score = answer.Score
			q.Feedback = answer.Feedback
		}
	}
	if privileged || assessment.ShowCorrectAnswers {
		q.CorrectAnswer = item.AnswerKey
	}
	if privileged || assessment.ShowExplanations {
		q.Explanation = item.Explanation
	}
	return q
}

// shuffleQuestions reorders rendered questions within one section.
func shuffleQuestions(qs []SafeQuestion) {
	rand.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}

// shuffleJSONArray reorders a JSON array in place. Non-array payloads are
// returned untouched.
func shuffleJSONArray(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return raw
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) < 2 {
		return raw
	}
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	shuffled, err := json.Marshal(items)
	if err != nil {
		return raw
	}
	return shuffled
}
