package util

import "errors"

var (
	ErrAssessmentNotFound       = errors.New("assessment not found")
	ErrAssessmentNotAvailable   = errors.New("assessment not published or outside its availability window")
	ErrAttemptNotFound          = errors.New("attempt not found")
	ErrAttemptLimitReached      = errors.New("attempt limit reached")
	ErrAttemptNotWritable       = errors.New("attempt is not accepting answers")
	ErrAttemptAlreadySubmitted  = errors.New("attempt already submitted")
	ErrAttemptNotFinished       = errors.New("attempt is still in progress")
	ErrAttemptNotPendingGrading = errors.New("attempt has no answers pending manual grading")
	ErrQuestionNotInAssessment  = errors.New("question does not belong to this assessment")
	ErrPermissionDenied         = errors.New("permission denied")
	ErrNoQuestions              = errors.New("assessment has no questions")
	ErrTopicNotFound            = errors.New("topic not found")
)
