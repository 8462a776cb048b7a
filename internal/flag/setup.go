package flag

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
)

// SetupDatabase 负责自动迁移feature_flag表结构
func SetupDatabase() error {
	if err := database.DB.AutoMigrate(&FeatureFlag{}); err != nil {
		return fmt.Errorf("无法迁移feature_flag表: %w", err)
	}
	fmt.Println("FeatureFlag数据库表迁移成功。")
	return nil
}
