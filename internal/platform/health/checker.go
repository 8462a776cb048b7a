package health

import (
	"context"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次Redis健康检查并更新全局状态。
// Redis在本系统中只承担特性开关的读穿缓存，不可用时各模块自动降级为直接读库，
// 因此这里只做状态标记，不做任何修复动作。
func PerformCheck() {
	if database.RDB == nil {
		database.UpdateRedisStatus(false)
		return
	}
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()

	err := database.RDB.Ping(ctx).Err()
	database.UpdateRedisStatus(err == nil)
}

// StartRedisHealthCheck 在后台Goroutine中定期执行健康检查，
// 并在收到停机信号后退出。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	for {
		if err := handle.Sleep(checkInterval); err != nil {
			return
		}
		PerformCheck()
	}
}
