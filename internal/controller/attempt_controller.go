package controller

import (
	"encoding/json"
	"strconv"

	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// AnswerRequest 单题作答请求
type AnswerRequest struct {
	Answer        json.RawMessage `json:"answer" binding:"required"`
	TimeSpentSecs int             `json:"timeSpentSecs"`
}

// @Summary 开始一次测验
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assessmentID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}

	view, err := c.Service.StartAttempt(user.UserID, user.Role, uint(assessmentID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 恢复进行中的测验
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) ResumeAttempt(ctx *gin.Context) {
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

	view, err := c.Service.ResumeAttempt(user.UserID, uint(attemptID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 提交单题答案（重复提交覆盖旧答案）
// @Tags 测验作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Param questionRefId path int true "题目引用ID"
// @Param body body AnswerRequest true "答案内容"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers/{questionRefId} [put]
func (c *AttemptController) AnswerQuestion(ctx *gin.Context) {
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
	questionRefID, err := strconv.Atoi(ctx.Param("questionRefId"))
	if err != nil {
		util.BadRequest(ctx, "invalid question reference id")
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.AnswerAttempt(user.UserID, uint(attemptID), uint(questionRefID), req.Answer, req.TimeSpentSecs); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 交卷并评分
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
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

	attempt, err := c.Service.SubmitAttempt(user.UserID, uint(attemptID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 查看测验结果与逐题回顾
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/review [get]
func (c *AttemptController) GetReview(ctx *gin.Context) {
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

// @Summary 我的作答历史
// @Tags 测验作答
// @Produce json
// @Security BearerAuth
// @Param assessmentId query int false "测验ID"
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	assessmentID := uint(0)
	if idStr := ctx.Query("assessmentId"); idStr != "" {
		if id, err := strconv.Atoi(idStr); err == nil {
			assessmentID = uint(id)
		}
	}

	attempts, err := c.Service.ListAttempts(user.UserID, assessmentID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
