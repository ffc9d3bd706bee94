package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"assessment not found", util.ErrAssessmentNotFound, http.StatusNotFound},
		{"attempt not found", util.ErrAttemptNotFound, http.StatusNotFound},
		{"topic not found", util.ErrTopicNotFound, http.StatusNotFound},
		{"permission denied", util.ErrPermissionDenied, http.StatusForbidden},
		{"assessment not available", util.ErrAssessmentNotAvailable, http.StatusForbidden},
		{"attempt limit reached", util.ErrAttemptLimitReached, http.StatusBadRequest},
		{"attempt not writable", util.ErrAttemptNotWritable, http.StatusBadRequest},
		{"already submitted", util.ErrAttemptAlreadySubmitted, http.StatusBadRequest},
		{"question not in assessment", util.ErrQuestionNotInAssessment, http.StatusBadRequest},
		{"no questions", util.ErrNoQuestions, http.StatusBadRequest},
		{"attempt not finished", util.ErrAttemptNotFinished, http.StatusConflict},
		{"not pending grading", util.ErrAttemptNotPendingGrading, http.StatusConflict},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondServiceError(ctx, tt.err)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
