package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cme-platform/config"
	"cme-platform/internal/model"
	"cme-platform/internal/repository"
	"cme-platform/internal/router"
	"cme-platform/internal/service"
	dbPkg "cme-platform/pkg/db"
	"cme-platform/pkg/jwt"
	"cme-platform/pkg/logger"
	"cme-platform/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	logger.InitLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("配置校验失败", zap.Error(err))
	}

	logger.Info("=== 继续教育平台启动 ===")
	logger.Info("服务器配置信息",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.Close(db); err != nil {
			logger.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	logger.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Fatal("自动迁移失败", zap.Error(err))
	}
	logger.Info("自动迁移完成")

	// 3.2 Redis（可选）：登录失败限制与分类缓存
	var (
		redisClient *redis.Client
		loginGuard  *redis.LoginGuard
		categories  *redis.JSONCache
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Redis连接失败", zap.Error(err))
		}
		defer redisClient.Close()
		loginGuard = redis.NewLoginGuard(redisClient, cfg.Business.LoginMaxFailures, cfg.Business.LoginFailureWindow)
		categories = redis.NewJSONCache(redisClient, redis.CategoryTreeKey, cfg.Business.CategoryCacheTTL)
		logger.Info("Redis连接成功")
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)

	userRepo := repository.NewUserRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	postRepo := repository.NewPostRepository(db)

	pointsSvc := service.NewPointsService(db, repository.NewPointsRepository(db))
	services := router.Services{
		Auth:      service.NewAuthService(db, userRepo, doctorRepo, jwtSvc, loginGuard),
		Users:     service.NewUserService(userRepo),
		Courses:   service.NewCourseService(db, courseRepo, userRepo, pointsSvc, categories),
		Orders:    service.NewOrderService(repository.NewOrderRepository(db), userRepo, service.NewOrderNoGenerator(cfg.Business.OrderNoPrefix)),
		Points:    pointsSvc,
		Posts:     service.NewPostService(postRepo, userRepo),
		Doctors:   service.NewDoctorService(db, doctorRepo, userRepo),
		Experts:   service.NewExpertService(repository.NewExpertRepository(db), doctorRepo, courseRepo, postRepo),
		Lives:     service.NewLiveService(db, repository.NewLiveRepository(db), pointsSvc),
		Resources: service.NewResourceService(repository.NewResourceRepository(db)),
	}

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" && cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	engine := router.New(cfg, router.Deps{DB: db, Redis: redisClient, JWT: jwtSvc}, services)

	// 6. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. 启动HTTP服务器
	go func() {
		logger.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	logger.Info("服务器已安全关闭")
}
