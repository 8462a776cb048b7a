package training

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
)

// SetupDatabase 负责自动迁移训练相关的表结构
func SetupDatabase() error {
	if err := database.DB.AutoMigrate(&TrainingSession{}, &DailyActivity{}); err != nil {
		return fmt.Errorf("无法迁移training表: %w", err)
	}
	fmt.Println("Training数据库表迁移成功。")
	return nil
}
