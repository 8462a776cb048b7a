package leaderboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/lifecycle"
	"github.com/robfig/cron/v3"
)

// warmOnce 重算一轮配置中列出的kind。
// 开关关闭时静默跳过；单个kind失败不影响其余kind。
func warmOnce(kinds []string) {
	cfg, err := ResolveConfig()
	if err != nil {
		if !errors.Is(err, ErrDisabled) {
			fmt.Printf("快照预热: 读取配置失败: %v\n", err)
		}
		return
	}

	for _, kind := range kinds {
		if !strings.Contains(kind, ":") {
			fmt.Printf("快照预热: 忽略非法kind: %s\n", kind)
			continue
		}
		if _, err := RefreshSnapshot(kind, cfg); err != nil {
			fmt.Printf("快照预热: %v\n", err)
		}
	}
}

// StartWarmer 启动后台快照预热任务。
// 预热让公共读取极少落在重算路径上；它与请求触发的重算共用同一把咨询锁，
// 不会产生重复计算。收到停机信号后停止调度并等待在途任务结束。
func StartWarmer(handle *lifecycle.Handle) {
	defer handle.Close()

	lbCfg := config.Cfg.Leaderboard
	if len(lbCfg.WarmKinds) == 0 {
		fmt.Println("快照预热: 未配置预热kind，任务不启动。")
		return
	}

	c := cron.New()
	_, err := c.AddFunc(lbCfg.WarmCron, func() { warmOnce(lbCfg.WarmKinds) })
	if err != nil {
		fmt.Printf("快照预热: cron表达式非法 (%s): %v\n", lbCfg.WarmCron, err)
		return
	}
	c.Start()
	fmt.Printf("快照预热任务已启动 (cron=%s, kinds=%v)。\n", lbCfg.WarmCron, lbCfg.WarmKinds)

	<-handle.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	fmt.Println("快照预热任务已停止。")
}
