package service

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"edu_assessment_backend/internal/grading"
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/internal/repository"
	"edu_assessment_backend/internal/util"
	"edu_assessment_backend/pkg/logger"
	"edu_assessment_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MasteryTrigger is the one-way hook fired after an attempt reaches
// graded. Implementations must be safe to call from the request path and
// must never block or fail it.
type MasteryTrigger interface {
	TriggerAttempt(userID, attemptID uint)
}

// ResultExporter feeds graded attempts to the reporting collaborator.
type ResultExporter interface {
	ExportAttempt(attempt *model.Attempt, answers []model.AttemptAnswer)
}

type AttemptService struct {
	AttemptRepo    *repository.AttemptRepository
	AssessmentRepo *repository.AssessmentRepository
	QuestionRepo   *repository.QuestionBankRepository

	Mastery  MasteryTrigger
	Exporter ResultExporter
}

func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	assessmentRepo *repository.AssessmentRepository,
	questionRepo *repository.QuestionBankRepository,
	mastery MasteryTrigger,
	exporter ResultExporter,
) *AttemptService {
	return &AttemptService{
		AttemptRepo:    attemptRepo,
		AssessmentRepo: assessmentRepo,
		QuestionRepo:   questionRepo,
		Mastery:        mastery,
		Exporter:       exporter,
	}
}

// questionRef pairs a section reference with its resolved catalog item.
type questionRef struct {
	Section *model.AssessmentSection
	Ref     *model.SectionQuestion
	Item    *model.QuestionBankItem
}

type SectionView struct {
	SectionID uint           `json:"sectionId"`
	Title     string         `json:"title"`
	Order     int            `json:"order"`
	Questions []SafeQuestion `json:"questions"`
}

type AttemptView struct {
	Attempt  *model.Attempt `json:"attempt"`
	Sections []SectionView  `json:"sections"`
	Deadline *time.Time     `json:"deadline,omitempty"`

	// Answered maps question reference ids the student has already
	// submitted an answer for; used when resuming an attempt.
	Answered []uint `json:"answered,omitempty"`
}

type AttemptReview struct {
	Attempt   *model.Attempt   `json:"attempt"`
	Questions []ReviewQuestion `json:"questions"`
}

// StartAttempt creates a new in_progress attempt and returns the
// assessment content in safe mode. Privileged roles may preview
// unpublished or out-of-window assessments; the attempt cap applies to
// everyone.
func (s *AttemptService) StartAttempt(userID uint, role model.UserRole, assessmentID uint) (*AttemptView, error) {
	assessment, err := s.AssessmentRepo.FindByID(assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	if !role.Privileged() {
		if assessment.Status != model.AssessmentPublished || !assessment.AvailableAt(time.Now()) {
			return nil, util.ErrAssessmentNotAvailable
		}
	}

	if assessment.MaxAttempts > 0 {
		count, err := s.AttemptRepo.CountByUserAndAssessment(userID, assessmentID)
		if err != nil {
			return nil, err
		}
		if count >= int64(assessment.MaxAttempts) {
			return nil, util.ErrAttemptLimitReached
		}
	}

	refs, err := s.resolveQuestions(assessment)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, util.ErrNoQuestions
	}

	attempt := &model.Attempt{
		AssessmentID: assessmentID,
		UserID:       userID,
		Status:       model.AttemptInProgress,
		StartedAt:    time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	view := &AttemptView{
		Attempt:  attempt,
		Sections: s.renderSections(assessment, refs),
		Deadline: attempt.Deadline(assessment.TimeLimit),
	}
	return view, nil
}

// ResumeAttempt returns the safe view of an open attempt together with
// the set of already-answered question references.
func (s *AttemptService) ResumeAttempt(userID, attemptID uint) (*AttemptView, error) {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.Status.Writable() {
		return nil, util.ErrAttemptNotWritable
	}

	assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	refs, err := s.resolveQuestions(assessment)
	if err != nil {
		return nil, err
	}

	answers, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	answered := make([]uint, 0, len(answers))
	for _, a := range answers {
		answered = append(answered, a.QuestionRefID)
	}

	return &AttemptView{
		Attempt:  attempt,
		Sections: s.renderSections(assessment, refs),
		Deadline: attempt.Deadline(assessment.TimeLimit),
		Answered: answered,
	}, nil
}

// AnswerAttempt upserts the answer for one question of an open attempt.
// A later submission for the same question replaces the earlier one.
func (s *AttemptService) AnswerAttempt(userID, attemptID, questionRefID uint, payload json.RawMessage, timeSpentSecs int) error {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return err
	}
	if !attempt.Status.Writable() {
		return util.ErrAttemptNotWritable
	}

	assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return err
	}
	refs, err := s.resolveQuestions(assessment)
	if err != nil {
		return err
	}
	var found bool
	for _, ref := range refs {
		if ref.Ref.ID == questionRefID {
			found = true
			break
		}
	}
	if !found {
		return util.ErrQuestionNotInAssessment
	}

	return s.AttemptRepo.UpsertAnswer(&model.AttemptAnswer{
		AttemptID:     attemptID,
		QuestionRefID: questionRefID,
		Answer:        payload,
		TimeSpentSecs: timeSpentSecs,
	})
}

// SubmitAttempt freezes the attempt and grades every question of the
// assessment, answered or not, as one logical unit. The status transition
// is an atomic conditional update; the loser of a double-submit race gets
// ErrAttemptAlreadySubmitted.
func (s *AttemptService) SubmitAttempt(userID, attemptID uint) (*model.Attempt, error) {
	attempt, err := s.loadOwnedAttempt(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.Status.Writable() {
		return nil, util.ErrAttemptAlreadySubmitted
	}

	assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	refs, err := s.resolveQuestions(assessment)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, util.ErrNoQuestions
	}

	now := time.Now()
	entryStatus := model.AttemptSubmitted
	if deadline := attempt.Deadline(assessment.TimeLimit); deadline != nil && now.After(*deadline) {
		entryStatus = model.AttemptTimedOut
	}
	won, err := s.AttemptRepo.TransitionFromInProgress(attemptID, entryStatus, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, util.ErrAttemptAlreadySubmitted
	}
	attempt.Status = entryStatus
	attempt.SubmittedAt = &now

	existing, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byRef := make(map[uint]model.AttemptAnswer, len(existing))
	for _, a := range existing {
		byRef[a.QuestionRefID] = a
	}

	var totalScore, maxScore float64
	pending := 0
	graded := make([]model.AttemptAnswer, 0, len(refs))
	for _, ref := range refs {
		points := ref.Ref.EffectivePoints(ref.Item)
		maxScore += points

		answer, answered := byRef[ref.Ref.ID]
		if !answered {
			answer = model.AttemptAnswer{
				AttemptID:     attemptID,
				QuestionRefID: ref.Ref.ID,
			}
		}

		if !answered || len(answer.Answer) == 0 {
			// Unanswered questions score zero, including free-text ones.
			answer.IsCorrect = false
			answer.Score = 0
			answer.MaxScore = points
			answer.PendingManual = false
		} else {
			result := s.gradeAnswer(ref, answer.Answer, points)
			answer.IsCorrect = result.IsCorrect
			answer.Score = result.Score
			answer.MaxScore = result.MaxScore
			answer.PendingManual = result.PendingManual
			answer.Feedback = result.Feedback
			if result.PendingManual {
				pending++
			}
		}
		totalScore += answer.Score

		if answer.ID == 0 {
			err = s.AttemptRepo.UpsertAnswer(&answer)
		} else {
			err = s.AttemptRepo.SaveAnswer(&answer)
		}
		if err != nil {
			return nil, err
		}
		graded = append(graded, answer)
	}

	attempt.TotalScore = round2(totalScore)
	attempt.MaxScore = round2(maxScore)
	attempt.PendingManual = pending > 0
	if pending == 0 {
		attempt.Status = model.AttemptGraded
		attempt.GradedAt = &now
		attempt.Percentage = percentage(totalScore, maxScore)
	}
	if err := s.AttemptRepo.Save(attempt); err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptGraded {
		s.notifyGraded(attempt, graded)
	}
	return attempt, nil
}

// GetAttemptReview returns the per-question review of a finished attempt.
// Callers must own the attempt or hold a privileged role. The first owner
// review of a graded attempt moves it to reviewed.
func (s *AttemptService) GetAttemptReview(userID uint, role model.UserRole, attemptID uint) (*AttemptReview, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	owner := attempt.UserID == userID
	if !owner && !role.Privileged() {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status.Writable() {
		return nil, util.ErrAttemptNotFinished
	}

	assessment, err := s.AssessmentRepo.FindByID(attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	refs, err := s.resolveQuestions(assessment)
	if err != nil {
		return nil, err
	}
	answers, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byRef := make(map[uint]*model.AttemptAnswer, len(answers))
	for i := range answers {
		byRef[answers[i].QuestionRefID] = &answers[i]
	}

	questions := make([]ReviewQuestion, 0, len(refs))
	for _, ref := range refs {
		questions = append(questions, RenderForReview(ref.Item, ref.Ref, byRef[ref.Ref.ID], role, assessment))
	}

	if owner && attempt.Status == model.AttemptGraded {
		if err := s.AttemptRepo.MarkReviewed(attemptID); err != nil {
			logger.Log.Error("failed to mark attempt reviewed",
				zap.Uint("attemptId", attemptID), zap.Error(err))
		} else {
			attempt.Status = model.AttemptReviewed
		}
	}

	return &AttemptReview{Attempt: attempt, Questions: questions}, nil
}

// ListAttempts returns the user's own attempt history, optionally
// filtered by assessment.
func (s *AttemptService) ListAttempts(userID, assessmentID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListByUser(userID, assessmentID)
}

// ListPendingManual lists submitted attempts awaiting manual grading.
func (s *AttemptService) ListPendingManual(assessmentID uint) ([]model.Attempt, error) {
	return s.AttemptRepo.ListPendingManual(assessmentID)
}

// ManualScore is one human-graded score for a pending answer.
type ManualScore struct {
	QuestionRefID uint
	Score         float64
	Feedback      string
}

// GradePendingAnswers records manual scores for free-text answers and,
// once nothing is left pending, finalizes the attempt as graded.
func (s *AttemptService) GradePendingAnswers(attemptID uint, scores []ManualScore) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	awaiting := attempt.Status == model.AttemptSubmitted || attempt.Status == model.AttemptTimedOut
	if !awaiting || !attempt.PendingManual {
		return nil, util.ErrAttemptNotPendingGrading
	}

	for _, sc := range scores {
		answer, err := s.AttemptRepo.FindAnswer(attemptID, sc.QuestionRefID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrQuestionNotInAssessment
			}
			return nil, err
		}
		if !answer.PendingManual {
			continue
		}
		score := sc.Score
		if score < 0 {
			score = 0
		}
		if score > answer.MaxScore {
			score = answer.MaxScore
		}
		answer.Score = round2(score)
		answer.IsCorrect = answer.Score >= answer.MaxScore && answer.MaxScore > 0
		answer.PendingManual = false
		answer.Feedback = sc.Feedback
		if err := s.AttemptRepo.SaveAnswer(answer); err != nil {
			return nil, err
		}
	}

	answers, err := s.AttemptRepo.GetAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	var total float64
	pending := 0
	for _, a := range answers {
		total += a.Score
		if a.PendingManual {
			pending++
		}
	}

	attempt.TotalScore = round2(total)
	attempt.PendingManual = pending > 0
	if pending == 0 {
		now := time.Now()
		attempt.Status = model.AttemptGraded
		attempt.GradedAt = &now
		attempt.Percentage = percentage(total, attempt.MaxScore)
	}
	if err := s.AttemptRepo.Save(attempt); err != nil {
		return nil, err
	}

	if attempt.Status == model.AttemptGraded {
		s.notifyGraded(attempt, answers)
	}
	return attempt, nil
}

func (s *AttemptService) loadOwnedAttempt(userID, attemptID uint) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

// resolveQuestions flattens the assessment's sections into ordered
// question references with their catalog items. References to missing or
// deactivated items are skipped with a warning rather than failing the
// whole attempt.
func (s *AttemptService) resolveQuestions(assessment *model.AssessmentDefinition) ([]questionRef, error) {
	var ids []uint
	for _, section := range assessment.Sections {
		for _, ref := range section.Questions {
			ids = append(ids, ref.QuestionID)
		}
	}
	items, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	var refs []questionRef
	for i := range assessment.Sections {
		section := &assessment.Sections[i]
		for j := range section.Questions {
			ref := &section.Questions[j]
			item, ok := items[ref.QuestionID]
			if !ok {
				logger.Log.Warn("assessment references unknown question bank item",
					zap.Uint("assessmentId", assessment.ID),
					zap.Uint("questionId", ref.QuestionID))
				continue
			}
			refs = append(refs, questionRef{Section: section, Ref: ref, Item: &item})
		}
	}
	return refs, nil
}

func (s *AttemptService) renderSections(assessment *model.AssessmentDefinition, refs []questionRef) []SectionView {
	opts := RenderOptions{
		ShuffleOptions: assessment.ShuffleOptions,
		IncludePoints:  true,
	}

	views := make([]SectionView, 0, len(assessment.Sections))
	bySection := make(map[uint]int, len(assessment.Sections))
	for i := range assessment.Sections {
		section := &assessment.Sections[i]
		views = append(views, SectionView{
			SectionID: section.ID,
			Title:     section.Title,
			Order:     section.Order,
		})
		bySection[section.ID] = i
	}
	for _, ref := range refs {
		idx := bySection[ref.Section.ID]
		views[idx].Questions = append(views[idx].Questions, RenderForAttempt(ref.Item, ref.Ref, opts))
	}

	if assessment.ShuffleQuestions {
		for i := range views {
			qs := views[i].Questions
			shuffleQuestions(qs)
		}
	}
	return views
}

// gradeAnswer contains grading failures: a panic inside a scorer degrades
// that one question to an invalid result instead of aborting submission.
func (s *AttemptService) gradeAnswer(ref questionRef, submitted json.RawMessage, points float64) (result grading.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("grading panicked",
				zap.Uint("questionRefId", ref.Ref.ID), zap.Any("panic", r))
			result = grading.Result{
				MaxScore:      points,
				Feedback:      "grading failed for this question",
				InvalidAnswer: true,
			}
		}
	}()
	return grading.Grade(grading.Input{
		Type:      ref.Item.Type,
		AnswerKey: ref.Item.AnswerKey,
		Submitted: submitted,
		MaxScore:  points,
	})
}

func (s *AttemptService) notifyGraded(attempt *model.Attempt, answers []model.AttemptAnswer) {
	monitoring.ObserveAttemptGraded(string(attempt.Status))
	if s.Mastery != nil {
		s.Mastery.TriggerAttempt(attempt.UserID, attempt.ID)
	}
	if s.Exporter != nil {
		s.Exporter.ExportAttempt(attempt, answers)
	}
}

func percentage(total, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(total / max * 100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
