package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nthumods/config"
	"nthumods/internal/api/handler"
	"nthumods/internal/api/middleware"
	"nthumods/pkg/jwt"
	"nthumods/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
//
// rdb 可为 nil：此时匿名接口不限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	// 避免把 nil *redis.Client 装入接口
	var limiter middleware.RateLimiter
	if rdb != nil {
		limiter = rdb
	}
	rateLimit := middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 公开接口
		v1.GET("/periods", h.Timetable.ListPeriods)

		courses := v1.Group("/courses")
		{
			courses.GET("", rateLimit, h.Course.Search)
			courses.GET("/:raw_id", h.Course.Get)
			courses.PUT("", middleware.JWTAuth(jwtMgr), middleware.RoleAuth(middleware.RoleAdmin), h.Course.Import)
		}

		timetables := v1.Group("/timetables")
		{
			timetables.POST("/build", rateLimit, h.Timetable.Build)
			timetables.POST("/colors", rateLimit, h.Timetable.ColorMap)

			// 需要登录
			me := timetables.Group("/me")
			me.Use(middleware.JWTAuth(jwtMgr))
			{
				me.GET("", h.Timetable.GetMyTimetable)
				me.PUT("/selections", h.Timetable.SetSelections)
				me.PUT("/selections/:raw_id/hidden", h.Timetable.SetHidden)
				me.PUT("/colors", h.Timetable.UpdateColors)
				me.GET("/export.xlsx", h.Export.ExportExcel)
				me.GET("/export.ics", h.Export.ExportICS)
			}
		}
	}

	return r, nil
}
