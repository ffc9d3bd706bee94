package service

import (
	"encoding/json"
	"testing"

	"edu_assessment_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rendererItem() *model.QuestionBankItem {
	item := singleChoiceItem("b", 2)
	item.Explanation = "b is correct because of reasons"
	return &item
}

func TestRenderForAttempt(t *testing.T) {
	item := rendererItem()
	ref := &model.SectionQuestion{Order: 3}
	ref.ID = 42

	q := RenderForAttempt(item, ref, RenderOptions{IncludePoints: true})
	assert.Equal(t, uint(42), q.QuestionRefID)
	assert.Equal(t, model.QuestionSingleChoice, q.Type)
	assert.Equal(t, item.Prompt, q.Prompt)
	assert.Equal(t, 3, q.Order)
	require.NotNil(t, q.Points)
	assert.Equal(t, 2.0, *q.Points)
}

func TestRenderForAttemptPointsOverride(t *testing.T) {
	item := rendererItem()
	override := 5.0
	ref := &model.SectionQuestion{PointsOverride: &override}

	q := RenderForAttempt(item, ref, RenderOptions{IncludePoints: true})
	require.NotNil(t, q.Points)
	assert.Equal(t, 5.0, *q.Points)
}

func TestRenderForAttemptShuffleKeepsOptions(t *testing.T) {
	item := rendererItem()
	ref := &model.SectionQuestion{}

	q := RenderForAttempt(item, ref, RenderOptions{ShuffleOptions: true})

	var got []string
	require.NoError(t, json.Unmarshal(q.Options, &got))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
}

func TestRenderForReviewVisibility(t *testing.T) {
	item := rendererItem()
	ref := &model.SectionQuestion{}
	answer := &model.AttemptAnswer{
		Answer:    json.RawMessage(`{"selected":"b"}`),
		IsCorrect: true,
		Score:     2,
		MaxScore:  2,
	}

	// Default flags hide key and explanation from students.
	plain := &model.AssessmentDefinition{ShowResultsImmediately: true}
	q := RenderForReview(item, ref, answer, model.Student, plain)
	assert.True(t, q.Answered)
	assert.True(t, q.IsCorrect)
	assert.Equal(t, 2.0, q.Score)
	assert.Empty(t, q.CorrectAnswer)
	assert.Empty(t, q.Explanation)

	// Withheld results blank the per-question outcome for students.
	withheld := &model.AssessmentDefinition{}
	q = RenderForReview(item, ref, answer, model.Student, withheld)
	assert.True(t, q.Answered)
	assert.False(t, q.IsCorrect)
	assert.Zero(t, q.Score)

	// Assessment flags open them up.
	open := &model.AssessmentDefinition{ShowResultsImmediately: true, ShowCorrectAnswers: true, ShowExplanations: true}
	q = RenderForReview(item, ref, answer, model.Student, open)
	assert.JSONEq(t, `{"correct":"b"}`, string(q.CorrectAnswer))
	assert.Equal(t, item.Explanation, q.Explanation)

	// Privileged roles ignore the flags.
	q = RenderForReview(item, ref, answer, model.Admin, plain)
	assert.JSONEq(t, `{"correct":"b"}`, string(q.CorrectAnswer))
	assert.Equal(t, item.Explanation, q.Explanation)
}

func TestRenderForReviewUnanswered(t *testing.T) {
	item := rendererItem()
	ref := &model.SectionQuestion{}

	q := RenderForReview(item, ref, nil, model.Student, &model.AssessmentDefinition{})
	assert.False(t, q.Answered)
	assert.Zero(t, q.Score)
	assert.Equal(t, 2.0, q.MaxScore)
}

func TestShuffleJSONArray(t *testing.T) {
	// Non-array payloads pass through untouched.
	obj := json.RawMessage(`{"a":1}`)
	assert.Equal(t, obj, shuffleJSONArray(obj))

	var empty json.RawMessage
	assert.Equal(t, empty, shuffleJSONArray(empty))

	arr := json.RawMessage(`[1,2,3,4,5,6]`)
	var got []int
	require.NoError(t, json.Unmarshal(shuffleJSONArray(arr), &got))
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6}, got)
}
