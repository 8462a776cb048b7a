package leaderboard

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
)

// SetupDatabase 负责自动迁移快照缓存表结构
func SetupDatabase() error {
	if err := database.DB.AutoMigrate(&RankingSnapshot{}); err != nil {
		return fmt.Errorf("无法迁移ranking_snapshot表: %w", err)
	}
	fmt.Println("RankingSnapshot数据库表迁移成功。")
	return nil
}
