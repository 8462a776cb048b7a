package startup

import (
	"fmt"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/flag"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/leaderboard"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/session"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/training"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
)

// InitializeApplication 是应用启动时执行的总入口，按依赖顺序完成各模块的表迁移。
func InitializeApplication() error {
	fmt.Println("开始应用初始化...")

	if err := user.SetupDatabase(); err != nil {
		return err
	}
	if err := session.SetupDatabase(); err != nil {
		return err
	}
	if err := training.SetupDatabase(); err != nil {
		return err
	}
	if err := flag.SetupDatabase(); err != nil {
		return err
	}
	if err := leaderboard.SetupDatabase(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
