package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/api"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/leaderboard"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/health"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/lock"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/shutdown"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/startup"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/lifecycle"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 加载 .env 和配置文件
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	// 2. 注入会话签名密钥并初始化存储
	token.SetSecret(cfg.Session.Secret)
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)
	lock.Use(cfg.Database.Driver)

	// 3. 执行各模块的表迁移
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 4. 执行一次启动后健康检查，并启动后台服务
	health.PerformCheck()

	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	healthHandle, err := gracefulMgr.NewServiceHandle("redis-health-check")
	if err != nil {
		panic(err)
	}
	go health.StartRedisHealthCheck(healthHandle)

	warmerHandle, err := gracefulMgr.NewServiceHandle("snapshot-warmer")
	if err != nil {
		panic(err)
	}
	go leaderboard.StartWarmer(warmerHandle)

	// 5. 构建Gin引擎并注册路由
	r := gin.Default()
	allowedOrigins := cfg.Server.Cors.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	// 6. 启动HTTP服务器并阻塞等待停机信号
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}
	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic("Failed to start server: " + err.Error())
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
