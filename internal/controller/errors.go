package controller

import (
	"errors"
	"net/http"

	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将服务层错误映射为 HTTP 响应
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAssessmentNotFound),
		errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrTopicNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAssessmentNotAvailable):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAttemptNotFinished),
		errors.Is(err, util.ErrAttemptNotPendingGrading):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrAttemptLimitReached),
		errors.Is(err, util.ErrAttemptNotWritable),
		errors.Is(err, util.ErrAttemptAlreadySubmitted),
		errors.Is(err, util.ErrQuestionNotInAssessment),
		errors.Is(err, util.ErrNoQuestions):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
