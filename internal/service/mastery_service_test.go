package service

import (
	"encoding/json"
	"testing"

	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestComputeMasteryPercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 4, 0},
		{4, 4, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, computeMasteryPercent(tt.correct, tt.total), "%d/%d", tt.correct, tt.total)
	}
}

// seedTopicQuiz builds a published assessment whose questions all belong
// to the given topic.
func seedTopicQuiz(t *testing.T, db *gorm.DB, topicID uint, title string, corrects ...string) *fixture {
	t.Helper()
	items := make([]model.QuestionBankItem, 0, len(corrects))
	for _, c := range corrects {
		item := singleChoiceItem(c, 1)
		id := topicID
		item.TopicID = &id
		items = append(items, item)
	}
	return seedAssessment(t, db, model.AssessmentDefinition{Title: title}, items...)
}

func gradeQuiz(t *testing.T, svc *AttemptService, fx *fixture, userID uint, answers ...string) *model.Attempt {
	t.Helper()
	view, err := svc.StartAttempt(userID, model.Student, fx.assessment.ID)
	require.NoError(t, err)
	for i, a := range answers {
		payload, _ := json.Marshal(map[string]string{"selected": a})
		require.NoError(t, svc.AnswerAttempt(userID, view.Attempt.ID, fx.refs[i].ID, payload, 0))
	}
	attempt, err := svc.SubmitAttempt(userID, view.Attempt.ID)
	require.NoError(t, err)
	require.Equal(t, model.AttemptGraded, attempt.Status)
	return attempt
}

func TestUpdateMasteryAfterAttempt(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var topic model.Topic
	require.NoError(t, db.Where("code = ?", "loop").First(&topic).Error)

	fx := seedTopicQuiz(t, db, topic.ID, "Loop quiz", "a", "b", "c")

	// Two of three correct.
	attempt := gradeQuiz(t, attemptSvc, fx, 7, "a", "b", "a")
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(7, attempt.ID))

	rows, err := masterySvc.GetUserMastery(7)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, topic.ID, rows[0].TopicID)
	assert.Equal(t, 3, rows[0].TotalQuestions)
	assert.Equal(t, 2, rows[0].CorrectAnswers)
	assert.Equal(t, 67, rows[0].MasteryPercent)
}

func TestMasteryRecomputeIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var topic model.Topic
	require.NoError(t, db.Where("code = ?", "array").First(&topic).Error)

	fx := seedTopicQuiz(t, db, topic.ID, "Array quiz", "a", "b")
	attempt := gradeQuiz(t, attemptSvc, fx, 3, "a", "a")

	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(3, attempt.ID))
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(3, attempt.ID))
	require.NoError(t, masterySvc.RecomputeTopicMastery(3, topic.ID))

	rows, err := masterySvc.GetUserMastery(3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].TotalQuestions)
	assert.Equal(t, 1, rows[0].CorrectAnswers)
	assert.Equal(t, 50, rows[0].MasteryPercent)
}

func TestMasteryAggregatesAcrossAttempts(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var topic model.Topic
	require.NoError(t, db.Where("code = ?", "sort").First(&topic).Error)

	first := seedTopicQuiz(t, db, topic.ID, "Sort quiz 1", "a", "b")
	second := seedTopicQuiz(t, db, topic.ID, "Sort quiz 2", "c", "a")

	a1 := gradeQuiz(t, attemptSvc, first, 5, "a", "b")
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(5, a1.ID))

	a2 := gradeQuiz(t, attemptSvc, second, 5, "b", "b")
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(5, a2.ID))

	rows, err := masterySvc.GetUserMastery(5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].TotalQuestions)
	assert.Equal(t, 2, rows[0].CorrectAnswers)
	assert.Equal(t, 50, rows[0].MasteryPercent)
}

func TestMasteryIgnoresUnfinishedAttempts(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var topic model.Topic
	require.NoError(t, db.Where("code = ?", "search").First(&topic).Error)

	fx := seedTopicQuiz(t, db, topic.ID, "Search quiz", "a")

	// An open attempt with a recorded answer contributes nothing.
	view, err := attemptSvc.StartAttempt(9, model.Student, fx.assessment.ID)
	require.NoError(t, err)
	require.NoError(t, attemptSvc.AnswerAttempt(9, view.Attempt.ID, fx.refs[0].ID, json.RawMessage(`{"selected":"a"}`), 0))

	require.NoError(t, masterySvc.RecomputeTopicMastery(9, topic.ID))

	rows, err := masterySvc.GetUserMastery(9)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].TotalQuestions)
	assert.Zero(t, rows[0].MasteryPercent)
}

func TestWeakestAndStrongestTopics(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 2)

	var loops, arrays model.Topic
	require.NoError(t, db.Where("code = ?", "loop").First(&loops).Error)
	require.NoError(t, db.Where("code = ?", "array").First(&arrays).Error)

	weak := seedTopicQuiz(t, db, loops.ID, "Weak quiz", "a", "b")
	strong := seedTopicQuiz(t, db, arrays.ID, "Strong quiz", "a", "b")

	a1 := gradeQuiz(t, attemptSvc, weak, 4, "b", "a") // 0/2
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(4, a1.ID))
	a2 := gradeQuiz(t, attemptSvc, strong, 4, "a", "b") // 2/2
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(4, a2.ID))

	weakest, err := masterySvc.WeakestTopics(4, 1)
	require.NoError(t, err)
	require.Len(t, weakest, 1)
	assert.Equal(t, loops.ID, weakest[0].TopicID)

	strongest, err := masterySvc.StrongestTopics(4, 1)
	require.NoError(t, err)
	require.Len(t, strongest, 1)
	assert.Equal(t, arrays.ID, strongest[0].TopicID)
}

func TestGetOverallMastery(t *testing.T) {
	db := setupTestDB(t)
	attemptSvc := newTestAttemptService(db)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var loops, arrays model.Topic
	require.NoError(t, db.Where("code = ?", "loop").First(&loops).Error)
	require.NoError(t, db.Where("code = ?", "array").First(&arrays).Error)

	first := seedTopicQuiz(t, db, loops.ID, "Loop overall quiz", "a", "b", "c")
	second := seedTopicQuiz(t, db, arrays.ID, "Array overall quiz", "a")

	// 2/3 on loops, 0/1 on arrays: 2 of 4 overall.
	a1 := gradeQuiz(t, attemptSvc, first, 8, "a", "b", "a")
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(8, a1.ID))
	a2 := gradeQuiz(t, attemptSvc, second, 8, "b")
	require.NoError(t, masterySvc.UpdateMasteryAfterAttempt(8, a2.ID))

	overall, err := masterySvc.GetOverallMastery(8)
	require.NoError(t, err)
	assert.Equal(t, 4, overall.TotalQuestions)
	assert.Equal(t, 2, overall.CorrectAnswers)
	assert.Equal(t, 50, overall.MasteryPercent)
	assert.Equal(t, 2, overall.TopicsTracked)
}

func TestGetOverallMasteryNoHistory(t *testing.T) {
	db := setupTestDB(t)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	overall, err := masterySvc.GetOverallMastery(99)
	require.NoError(t, err)
	assert.Zero(t, overall.TotalQuestions)
	assert.Zero(t, overall.MasteryPercent)
	assert.Zero(t, overall.TopicsTracked)
}

func TestGetTopicMastery(t *testing.T) {
	db := setupTestDB(t)
	masterySvc := NewMasteryService(repository.NewMasteryRepository(db), 1)

	var topic model.Topic
	require.NoError(t, db.Where("code = ?", "pointer").First(&topic).Error)

	// No history yet: an empty row, not an error.
	row, err := masterySvc.GetTopicMastery(11, topic.ID)
	require.NoError(t, err)
	assert.Zero(t, row.TotalQuestions)
	assert.Equal(t, topic.ID, row.TopicID)
}
