package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/handler"
	"github.com/civicfix/civicfix-api/internal/middleware"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/pkg/config"
)

// Deps bundles everything the route table needs.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Redis     *redis.Client
	Auth      *service.AuthService
	Triage    *service.TriageService
	Metrics   *service.MetricsService
	AuthH     *handler.AuthHandler
	IssueH    *handler.IssueHandler
	ExportH   *handler.ExportHandler
	DashH     *handler.DashboardHandler
	UploadDir string
}

// Register wires every route onto the engine.
func Register(r *gin.Engine, d Deps) {
	r.Use(middleware.Metrics(d.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	api := r.Group(d.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", d.AuthH.Register)
		auth.POST("/login", d.AuthH.Login)
		auth.POST("/logout", middleware.OptionalJWT(d.Auth), d.AuthH.Logout)
		auth.GET("/me", middleware.JWT(d.Auth), d.AuthH.Me)
	}

	issues := api.Group("/issues")
	{
		issues.GET("", middleware.OptionalJWT(d.Auth), d.IssueH.List)
		issues.GET("/:id", middleware.OptionalJWT(d.Auth), d.IssueH.Get)
		issues.GET("/:id/export", d.ExportH.Export)

		protected := issues.Group("")
		protected.Use(middleware.JWT(d.Auth))
		{
			protected.POST("",
				middleware.RateLimit(d.Redis, d.Config.RateLimit, "report", d.Logger),
				d.IssueH.Create)
			protected.POST("/:id/vote",
				middleware.RateLimit(d.Redis, d.Config.RateLimit, "vote", d.Logger),
				d.IssueH.Vote)
			protected.POST("/:id/like", d.IssueH.Like)
			protected.PATCH("/:id/status", d.IssueH.UpdateStatus)
		}
	}

	// Sibling of /issues so the static segment never competes with the
	// :id wildcard in the routing tree.
	api.GET("/my/issues", middleware.JWT(d.Auth), d.IssueH.Mine)

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(d.Auth), middleware.AdminOnly(d.Triage))
	{
		admin.GET("/dashboard", d.DashH.Overview)
		admin.GET("/dashboard/export", d.DashH.ExportCSV)
	}
}
