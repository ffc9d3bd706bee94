package grading

import (
	"encoding/json"
	"fmt"
	"math"

	"edu_assessment_backend/internal/model"
)

// Input carries everything needed to score one submitted answer. The
// engine is a pure function of its input: no storage, no clock, no
// instance state.
type Input struct {
	Type      model.QuestionType
	AnswerKey json.RawMessage
	Submitted json.RawMessage
	MaxScore  float64
}

// Result of scoring a single answer. InvalidAnswer marks a payload whose
// shape did not match the question type; it is distinct from a merely
// incorrect answer and never raised as an error.
type Result struct {
	IsCorrect      bool    `json:"isCorrect"`
	Score          float64 `json:"score"`
	MaxScore       float64 `json:"maxScore"`
	PercentCorrect float64 `json:"percentCorrect"`
	Feedback       string  `json:"feedback,omitempty"`
	PendingManual  bool    `json:"pendingManual"`
	InvalidAnswer  bool    `json:"invalidAnswer"`
}

type scoreFunc func(in Input) Result

var scorers = map[model.QuestionType]scoreFunc{
	model.QuestionSingleChoice: scoreSingleChoice,
	model.QuestionBoolean:      scoreBoolean,
	model.QuestionMultiSelect:  scoreMultiSelect,
	model.QuestionShortText:    scoreShortText,
	model.QuestionNumeric:      scoreNumeric,
	model.QuestionMatching:     scoreMatching,
	model.QuestionOrdering:     scoreOrdering,
	model.QuestionFillBlanks:   scoreFillBlanks,
	model.QuestionFreeText:     scoreFreeText,
}

// Grade scores one submitted answer against one answer key, dispatched by
// question type. Unknown types and malformed payloads yield an invalid
// result rather than an error.
func Grade(in Input) Result {
	fn, ok := scorers[in.Type]
	if !ok {
		return invalid(in, fmt.Sprintf("unknown question type %q", in.Type))
	}
	return fn(in)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func invalid(in Input, feedback string) Result {
	return Result{
		IsCorrect:     false,
		Score:         0,
		MaxScore:      in.MaxScore,
		Feedback:      feedback,
		InvalidAnswer: true,
	}
}

func allOrNothing(in Input, correct bool, feedback string) Result {
	r := Result{
		IsCorrect: correct,
		MaxScore:  in.MaxScore,
		Feedback:  feedback,
	}
	if correct {
		r.Score = in.MaxScore
		r.PercentCorrect = 100
	}
	return r
}

// partial builds a partial-credit result from a fraction in [0, 1].
func partial(in Input, fraction float64, feedback string) Result {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return Result{
		IsCorrect:      fraction == 1,
		Score:          round2(fraction * in.MaxScore),
		MaxScore:       in.MaxScore,
		PercentCorrect: round2(fraction * 100),
		Feedback:       feedback,
	}
}
