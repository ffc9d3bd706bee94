package grading

import (
	"encoding/json"
	"testing"

	"edu_assessment_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func grade(t *testing.T, qtype model.QuestionType, key, submitted string, maxScore float64) Result {
	t.Helper()
	return Grade(Input{
		Type:      qtype,
		AnswerKey: json.RawMessage(key),
		Submitted: json.RawMessage(submitted),
		MaxScore:  maxScore,
	})
}

func TestGradeUnknownType(t *testing.T) {
	res := grade(t, model.QuestionType("essay_v2"), `{}`, `{}`, 5)
	assert.True(t, res.InvalidAnswer)
	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.Score)
	assert.Equal(t, 5.0, res.MaxScore)
}

func TestGradeSingleChoice(t *testing.T) {
	key := `{"correct":"b"}`

	tests := []struct {
		name      string
		submitted string
		correct   bool
		invalid   bool
	}{
		{"correct option", `{"selected":"b"}`, true, false},
		{"wrong option", `{"selected":"a"}`, false, false},
		{"missing field", `{}`, false, true},
		{"wrong shape", `{"selected":[1,2]}`, false, true},
		{"not json", `selected=b`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, model.QuestionSingleChoice, key, tt.submitted, 2)
			assert.Equal(t, tt.correct, res.IsCorrect)
			assert.Equal(t, tt.invalid, res.InvalidAnswer)
			if tt.correct {
				assert.Equal(t, 2.0, res.Score)
			} else {
				assert.Zero(t, res.Score)
			}
		})
	}
}

func TestGradeSingleChoiceMalformedKey(t *testing.T) {
	res := grade(t, model.QuestionSingleChoice, `{"answer":"b"}`, `{"selected":"b"}`, 1)
	assert.True(t, res.InvalidAnswer)
	assert.Equal(t, feedbackMalformedKey, res.Feedback)
}

func TestGradeBoolean(t *testing.T) {
	key := `{"correct":false}`

	res := grade(t, model.QuestionBoolean, key, `{"selected":false}`, 1)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 1.0, res.Score)

	res = grade(t, model.QuestionBoolean, key, `{"selected":true}`, 1)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.InvalidAnswer)

	res = grade(t, model.QuestionBoolean, key, `{}`, 1)
	assert.True(t, res.InvalidAnswer)
}

func TestGradeMultiSelect(t *testing.T) {
	key := `{"correct":["a","b"]}`

	tests := []struct {
		name      string
		submitted string
		score     float64
		correct   bool
	}{
		{"all correct", `{"selected":["b","a"]}`, 4, true},
		{"one of two", `{"selected":["a"]}`, 2, false},
		{"hit and miss cancel out", `{"selected":["a","c"]}`, 0, false},
		{"misses floor at zero", `{"selected":["c","d","e"]}`, 0, false},
		{"duplicates count once", `{"selected":["a","a"]}`, 2, false},
		{"empty selection", `{"selected":[]}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, model.QuestionMultiSelect, key, tt.submitted, 4)
			assert.False(t, res.InvalidAnswer)
			assert.Equal(t, tt.score, res.Score)
			assert.Equal(t, tt.correct, res.IsCorrect)
		})
	}
}

func TestGradeMultiSelectExtraSelectionBlocksFullCredit(t *testing.T) {
	// All correct options plus one wrong one must not grade as correct.
	res := grade(t, model.QuestionMultiSelect, `{"correct":["a","b"]}`, `{"selected":["a","b","c"]}`, 4)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 2.0, res.Score)
}

func TestGradeShortText(t *testing.T) {
	key := `{"accepted":["Photosynthesis"]}`

	res := grade(t, model.QuestionShortText, key, `{"text":"  photosynthesis "}`, 3)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 3.0, res.Score)

	// Loose matching accepts a containing phrase.
	res = grade(t, model.QuestionShortText, key, `{"text":"the process of photosynthesis"}`, 3)
	assert.True(t, res.IsCorrect)

	res = grade(t, model.QuestionShortText, key, `{"text":"respiration"}`, 3)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.InvalidAnswer)
}

func TestGradeShortTextExactAndCaseSensitive(t *testing.T) {
	key := `{"accepted":["pH"],"caseSensitive":true,"exactMatch":true}`

	res := grade(t, model.QuestionShortText, key, `{"text":"pH"}`, 1)
	assert.True(t, res.IsCorrect)

	res = grade(t, model.QuestionShortText, key, `{"text":"ph"}`, 1)
	assert.False(t, res.IsCorrect)

	res = grade(t, model.QuestionShortText, key, `{"text":"pH value"}`, 1)
	assert.False(t, res.IsCorrect)
}

func TestGradeNumeric(t *testing.T) {
	key := `{"value":3.14,"tolerance":0.005}`

	tests := []struct {
		name      string
		submitted string
		correct   bool
	}{
		{"exact", `{"value":3.14}`, true},
		{"upper boundary inclusive", `{"value":3.145}`, true},
		{"lower boundary inclusive", `{"value":3.135}`, true},
		{"just outside", `{"value":3.146}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := grade(t, model.QuestionNumeric, key, tt.submitted, 2)
			assert.Equal(t, tt.correct, res.IsCorrect)
		})
	}
}

func TestGradeNumericDefaultToleranceIsZero(t *testing.T) {
	key := `{"value":10}`

	res := grade(t, model.QuestionNumeric, key, `{"value":10}`, 1)
	assert.True(t, res.IsCorrect)

	res = grade(t, model.QuestionNumeric, key, `{"value":10.0001}`, 1)
	assert.False(t, res.IsCorrect)
}

func TestGradeMatching(t *testing.T) {
	key := `{"pairs":[{"left":"cat","right":"mammal"},{"left":"frog","right":"amphibian"},{"left":"eagle","right":"bird"},{"left":"shark","right":"fish"}]}`

	res := grade(t, model.QuestionMatching, key, `{"pairs":[{"left":"cat","right":"mammal"},{"left":"frog","right":"bird"},{"left":"eagle","right":"amphibian"},{"left":"shark","right":"fish"}]}`, 4)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 2.0, res.Score)
	assert.Equal(t, 50.0, res.PercentCorrect)

	res = grade(t, model.QuestionMatching, key, `{"pairs":[{"left":"cat","right":"mammal"},{"left":"frog","right":"amphibian"},{"left":"eagle","right":"bird"},{"left":"shark","right":"fish"}]}`, 4)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 4.0, res.Score)
}

func TestGradeOrdering(t *testing.T) {
	key := `{"order":["a","b","c","d"]}`

	// Adjacent swap leaves two of four positions in agreement.
	res := grade(t, model.QuestionOrdering, key, `{"order":["a","c","b","d"]}`, 4)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 2.0, res.Score)

	res = grade(t, model.QuestionOrdering, key, `{"order":["a","b","c","d"]}`, 4)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, 4.0, res.Score)

	// Matching prefix with extra trailing items loses points: four of
	// five positions in agreement.
	res = grade(t, model.QuestionOrdering, key, `{"order":["a","b","c","d","e"]}`, 4)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 3.2, res.Score)
}

func TestGradeFillBlanks(t *testing.T) {
	key := `{"blanks":["Paris","Berlin"]}`

	res := grade(t, model.QuestionFillBlanks, key, `{"blanks":["paris","Germany"]}`, 2)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.InvalidAnswer)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, 50.0, res.PercentCorrect)

	// Blank count mismatch is a malformed answer, not a wrong one.
	res = grade(t, model.QuestionFillBlanks, key, `{"blanks":["Paris"]}`, 2)
	assert.True(t, res.InvalidAnswer)
	assert.Zero(t, res.Score)
}

func TestGradeFillBlanksCaseSensitive(t *testing.T) {
	key := `{"blanks":["Paris"],"caseSensitive":true}`

	res := grade(t, model.QuestionFillBlanks, key, `{"blanks":["paris"]}`, 1)
	assert.False(t, res.IsCorrect)
	assert.Zero(t, res.Score)
}

func TestGradeFreeText(t *testing.T) {
	res := grade(t, model.QuestionFreeText, `{}`, `{"text":"my essay"}`, 10)
	assert.True(t, res.PendingManual)
	assert.False(t, res.IsCorrect)
	assert.False(t, res.InvalidAnswer)
	assert.Zero(t, res.Score)
	assert.Equal(t, 10.0, res.MaxScore)
}

func TestGradeNeverReturnsNegativeScore(t *testing.T) {
	for qtype := range scorers {
		res := grade(t, qtype, `{"correct":["a"],"order":["a"],"pairs":[{"left":"a","right":"b"}],"blanks":["a"],"accepted":["a"],"value":1}`, `{}`, 5)
		assert.GreaterOrEqual(t, res.Score, 0.0, "type %s", qtype)
	}
}
