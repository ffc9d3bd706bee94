package controller

import (
	"strconv"

	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GradingController 教师端人工评分接口
type GradingController struct {
	Service *service.AttemptService
}

func NewGradingController(svc *service.AttemptService) *GradingController {
	return &GradingController{Service: svc}
}

// ManualScoreRequest 单题人工评分
type ManualScoreRequest struct {
	QuestionRefID uint    `json:"questionRefId" binding:"required"`
	Score         float64 `json:"score"`
	Feedback      string  `json:"feedback"`
}

// GradeAttemptRequest 批量人工评分请求
type GradeAttemptRequest struct {
	Scores []ManualScoreRequest `json:"scores" binding:"required,min=1,dive"`
}

// @Summary 待人工评分的作答列表
// @Tags 人工评分
// @Produce json
// @Security BearerAuth
// @Param assessmentId query int false "测验ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/grading/pending [get]
func (c *GradingController) ListPending(ctx *gin.Context) {
	assessmentID := uint(0)
	if idStr := ctx.Query("assessmentId"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil {
			assessmentID = uint(id)
		}
	}

	attempts, err := c.Service.ListPendingManual(assessmentID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// @Summary 教师查看作答逐题详情
// @Tags 人工评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/grading/attempts/{id} [get]
func (c *GradingController) GetAttemptDetail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	review, err := c.Service.GetAttemptReview(user.UserID, user.Role, uint(attemptID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// @Summary 录入人工评分
// @Tags 人工评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Param body body GradeAttemptRequest true "评分列表"
// @Success 200 {object} util.Response
// @Router /api/teacher/grading/attempts/{id} [post]
func (c *GradingController) GradeAttempt(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req GradeAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	scores := make([]service.ManualScore, 0, len(req.Scores))
	for _, s := range req.Scores {
		scores = append(scores, service.ManualScore{
			QuestionRefID: s.QuestionRefID,
			Score:         s.Score,
			Feedback:      s.Feedback,
		})
	}

	attempt, err := c.Service.GradePendingAnswers(uint(attemptID), scores)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}
