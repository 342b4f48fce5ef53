package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ogurasousui/jobboard-clean-arch/internal/adapters/http/middleware"
	"github.com/ogurasousui/jobboard-clean-arch/internal/core/user"
)

// RouterDeps はルーター構築に必要な依存です。
type RouterDeps struct {
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Companies    *CompanyHandler
	Health       *HealthHandler
	Accounts     *AccountHandler
	// Auth は /api 配下で操作主体を解決するミドルウェアです。
	Auth        gin.HandlerFunc
	CORSOrigins []string
}

// NewRouter は API のルーティングを構築します。
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		cors.New(corsConfig(deps.CORSOrigins)),
	)

	r.GET("/health", deps.Health.Check)
	r.POST("/api/auth/register", deps.Accounts.Register)

	api := r.Group("/api", deps.Auth)

	jobs := api.Group("/jobs")
	jobs.GET("", middleware.RequireRoles(user.RoleAdmin), deps.Jobs.ListAll)
	jobs.POST("/search", middleware.RequireRoles(user.RoleAdmin, user.RoleEmployer, user.RoleJobSeeker), deps.Jobs.Search)
	jobs.POST("", middleware.RequireRoles(user.RoleEmployer), deps.Jobs.Create)
	jobs.DELETE("/:id", middleware.RequireRoles(user.RoleEmployer, user.RoleAdmin), deps.Jobs.Delete)
	jobs.PATCH("/:id/status", middleware.RequireRoles(user.RoleEmployer, user.RoleAdmin), deps.Jobs.UpdateStatus)

	apps := api.Group("/applications")
	apps.POST("/apply", middleware.RequireRoles(user.RoleJobSeeker), deps.Applications.Apply)
	apps.GET("", middleware.RequireRoles(user.RoleAdmin), deps.Applications.ListAll)
	apps.POST("/job/:jobId/search", middleware.RequireRoles(user.RoleEmployer, user.RoleAdmin), deps.Applications.SearchForJob)
	apps.GET("/my-applications", middleware.RequireRoles(user.RoleJobSeeker), deps.Applications.ListMine)

	companies := api.Group("/companies")
	companies.POST("", middleware.RequireRoles(user.RoleEmployer), deps.Companies.Create)
	companies.GET("", deps.Companies.List)
	companies.GET("/:id", deps.Companies.Get)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
