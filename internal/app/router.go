package app

import (
	"edu_assessment_backend/docs"
	"edu_assessment_backend/internal/config"
	"edu_assessment_backend/internal/middleware"
	"edu_assessment_backend/internal/model"
	"edu_assessment_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	// 测验
	rg.GET("/assessments", c.assessment.ListAvailable)
	rg.GET("/assessments/:id", c.assessment.GetAssessment)
	rg.POST("/assessments/:id/attempts", c.attempt.StartAttempt)

	// 作答
	rg.GET("/attempts", c.attempt.ListAttempts)
	rg.GET("/attempts/:id", c.attempt.ResumeAttempt)
	rg.PUT("/attempts/:id/answers/:questionRefId", c.attempt.AnswerQuestion)
	rg.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
	rg.GET("/attempts/:id/review", c.attempt.GetReview)

	// 掌握度
	rg.GET("/mastery", c.mastery.GetMyMastery)
	rg.GET("/mastery/overall", c.mastery.GetOverall)
	rg.GET("/mastery/weakest", c.mastery.GetWeakest)
	rg.GET("/mastery/strongest", c.mastery.GetStrongest)
	rg.GET("/mastery/topics/:topicId", c.mastery.GetTopic)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Tutor, model.Admin))
	{
		teacher.GET("/grading/pending", c.grading.ListPending)
		teacher.GET("/grading/attempts/:id", c.grading.GetAttemptDetail)
		teacher.POST("/grading/attempts/:id", c.grading.GradeAttempt)
	}
}
