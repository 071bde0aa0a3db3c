// Package router 组装中间件与全部HTTP路由
package router

import (
	"cme-platform/config"
	"cme-platform/internal/handler"
	"cme-platform/internal/service"
	"cme-platform/pkg/errs"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/metrics"
	"cme-platform/pkg/middleware"
	"cme-platform/pkg/redis"
	"cme-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services 路由依赖的业务服务
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Courses   *service.CourseService
	Orders    *service.OrderService
	Points    *service.PointsService
	Posts     *service.PostService
	Doctors   *service.DoctorService
	Experts   *service.ExpertService
	Lives     *service.LiveService
	Resources *service.ResourceService
}

// Deps 基础设施依赖，Redis 未启用时为 nil
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	JWT   *jwt.JWTService
}

// New 创建路由
func New(cfg *config.Config, deps Deps, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(logger.LoggerMiddleware())
	r.Use(logger.ErrorLoggerMiddleware())
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}

	health := handler.NewHealthHandler(deps.DB, deps.Redis)
	r.GET("/health", health.Check)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	page := cfg.Pagination
	authH := handler.NewAuthHandler(svc.Auth, svc.Points)
	userH := handler.NewUserHandler(svc.Users, page)
	courseH := handler.NewCourseHandler(svc.Courses, page)
	orderH := handler.NewOrderHandler(svc.Orders, page)
	pointsH := handler.NewPointsHandler(svc.Points, page)
	postH := handler.NewPostHandler(svc.Posts, page)
	doctorH := handler.NewDoctorHandler(svc.Doctors, page)
	expertH := handler.NewExpertHandler(svc.Experts, page)
	liveH := handler.NewLiveHandler(svc.Lives, page)
	resourceH := handler.NewResourceHandler(svc.Resources, page)

	optional := deps.JWT.OptionalAuth()
	active := deps.JWT.ActiveUser(svc.Users)

	api := r.Group("/api")

	// 公开接口
	public := api.Group("", optional)
	{
		public.POST("/auth/register", authH.Register)
		public.POST("/auth/login", authH.Login)

		public.GET("/courses", courseH.List)
		public.GET("/courses/categories", courseH.Categories)
		public.GET("/courses/:id", courseH.Get)
		public.GET("/courses/:id/videos", courseH.Videos)
		public.GET("/courses/:id/comments", courseH.Comments)
		public.GET("/courses/:id/related", courseH.Related)

		public.GET("/posts", postH.List)
		public.GET("/posts/:id", postH.Get)

		public.GET("/doctors", doctorH.List)
		public.GET("/doctors/user/:userId", doctorH.GetByUser)
		public.GET("/doctors/:id", doctorH.Get)

		public.GET("/experts", expertH.List)
		public.GET("/experts/:id", expertH.Get)
		public.GET("/experts/:id/courses", expertH.Courses)
		public.GET("/experts/:id/articles", expertH.Articles)

		public.GET("/lives", liveH.List)
		public.GET("/lives/streaming", liveH.Streaming)
		public.GET("/lives/upcoming", liveH.Upcoming)
		public.GET("/lives/:id", liveH.Get)

		public.GET("/resources", resourceH.List)
		public.GET("/resources/:id", resourceH.Get)
	}

	// 需要登录且账号有效
	authed := api.Group("", active)
	{
		authed.GET("/auth/me", authH.Me)
		authed.POST("/auth/check-in", authH.CheckIn)
		authed.POST("/auth/verify-medical", authH.VerifyMedical)

		authed.GET("/users", userH.List)
		authed.POST("/users", userH.Create)
		authed.GET("/users/:id", userH.Get)
		authed.PATCH("/users/:id", userH.Update)
		authed.DELETE("/users/:id", userH.Delete)

		authed.POST("/courses", courseH.Create)
		authed.POST("/courses/categories", courseH.CreateCategory)
		authed.GET("/courses/my/history", courseH.MyHistory)
		authed.PATCH("/courses/:id", courseH.Update)
		authed.POST("/courses/:id/videos", courseH.AddVideo)
		authed.POST("/courses/:id/like", courseH.Like)
		authed.POST("/courses/:id/favorite", courseH.Favorite)
		authed.POST("/courses/:id/watch", courseH.Watch)
		authed.POST("/courses/:id/comment", courseH.Comment)

		authed.GET("/orders", orderH.List)
		authed.POST("/orders", orderH.Create)
		authed.GET("/orders/no/:orderNo", orderH.GetByOrderNo)
		authed.GET("/orders/:id", orderH.Get)
		authed.POST("/orders/:id/pay", orderH.Pay)
		authed.POST("/orders/:id/cancel", orderH.Cancel)

		authed.GET("/points/my", pointsH.My)
		authed.GET("/points/logs", pointsH.Logs)
		authed.POST("/points/exchange", pointsH.Exchange)

		authed.POST("/posts", postH.Create)
		authed.PATCH("/posts/:id", postH.Update)
		authed.DELETE("/posts/:id", postH.Delete)

		authed.POST("/doctors", doctorH.Create)
		authed.PATCH("/doctors/:id", doctorH.Update)
		authed.POST("/doctors/:id/verify", doctorH.Verify)

		authed.POST("/experts", expertH.Create)

		authed.POST("/lives", liveH.Create)
		authed.PATCH("/lives/:id", liveH.Update)
		authed.POST("/lives/:id/watch", liveH.Watch)

		authed.POST("/resources", resourceH.Create)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, errs.NotFound("接口不存在"))
	})
	return r
}
