package controller

import (
	"strconv"

	"edu_assessment_backend/internal/service"
	"edu_assessment_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MasteryController struct {
	Service *service.MasteryService
}

func NewMasteryController(svc *service.MasteryService) *MasteryController {
	return &MasteryController{Service: svc}
}

// @Summary 我的知识点掌握度
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mastery [get]
func (c *MasteryController) GetMyMastery(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rows, err := c.Service.GetUserMastery(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 总体掌握度
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/mastery/overall [get]
func (c *MasteryController) GetOverall(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	overall, err := c.Service.GetOverallMastery(user.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, overall)
}

// @Summary 掌握度最弱的知识点
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量"
// @Success 200 {object} util.Response
// @Router /api/mastery/weakest [get]
func (c *MasteryController) GetWeakest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	rows, err := c.Service.WeakestTopics(user.UserID, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 掌握度最强的知识点
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Param limit query int false "数量"
// @Success 200 {object} util.Response
// @Router /api/mastery/strongest [get]
func (c *MasteryController) GetStrongest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	rows, err := c.Service.StrongestTopics(user.UserID, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// @Summary 单个知识点的掌握度
// @Tags 掌握度
// @Produce json
// @Security BearerAuth
// @Param topicId path int true "知识点ID"
// @Success 200 {object} util.Response
// @Router /api/mastery/topics/{topicId} [get]
func (c *MasteryController) GetTopic(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	topicID, err := strconv.Atoi(ctx.Param("topicId"))
	if err != nil {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	row, err := c.Service.GetTopicMastery(user.UserID, uint(topicID))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, row)
}
