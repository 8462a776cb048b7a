package api

import (
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/leaderboard"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 排行榜相关的路由组 /api/leaderboard
		lbRoutes := api.Group("/leaderboard")
		{
			// 公共top-N榜单；访客可见性由特性开关的hideGuests在处理器内部决定
			lbRoutes.GET("/coins", leaderboard.GetCoinsBoard)
			lbRoutes.GET("/level", leaderboard.GetLevelBoard)

			// 个人实时名次，必须携带有效会话
			lbRoutes.GET("/coins/me", session.RequireUserMiddleware(), leaderboard.GetMyCoinsRank)
			lbRoutes.GET("/level/me", session.RequireUserMiddleware(), leaderboard.GetMyLevelRank)
		}
	}
}
