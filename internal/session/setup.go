package session

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
)

// SetupDatabase 负责自动迁移session表结构
func SetupDatabase() error {
	if err := database.DB.AutoMigrate(&Session{}); err != nil {
		return fmt.Errorf("无法迁移session表: %w", err)
	}
	fmt.Println("Session数据库表迁移成功。")
	return nil
}
