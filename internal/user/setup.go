package user

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
)

// SetupDatabase 负责自动迁移user表结构
func SetupDatabase() error {
	if err := database.DB.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("无法迁移user表: %w", err)
	}
	fmt.Println("User数据库表迁移成功。")
	return nil
}
