package flag

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"gorm.io/gorm"
)

const (
	// cacheKeyPrefix 是特性开关在Redis中的缓存键前缀。
	cacheKeyPrefix = "flag:cache:"
	// cacheTTL 是缓存的有效期。开关变更最多延迟这么久生效。
	cacheTTL = 5 * time.Second
)

// Get 读取一个特性开关。
// 优先走Redis读穿缓存；Redis不可用时降级为直接读库。
// 开关行不存在时返回 (nil, nil)，由调用方按"功能关闭"处理。
func Get(key string) (*FeatureFlag, error) {
	cacheKey := cacheKeyPrefix + key
	useCache := database.RDB != nil && database.IsRedisHealthy()

	// 1. 尝试缓存命中
	if useCache {
		if cached, err := database.RDB.Get(database.Ctx, cacheKey).Result(); err == nil {
			var f FeatureFlag
			if json.Unmarshal([]byte(cached), &f) == nil {
				return &f, nil
			}
		}
	}

	// 2. 回源数据库
	var f FeatureFlag
	err := database.DB.First(&f, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取特性开关 %s: %w", key, err)
	}

	// 3. 尽力回填缓存，失败不影响主流程
	if useCache {
		if data, err := json.Marshal(&f); err == nil {
			_ = database.RDB.Set(database.Ctx, cacheKey, data, cacheTTL).Err()
		}
	}
	return &f, nil
}

// Set 写入或更新一个特性开关，并使缓存立即失效。
// 主要由管理工具和测试使用。
func Set(f *FeatureFlag) error {
	if err := database.DB.Save(f).Error; err != nil {
		return fmt.Errorf("无法写入特性开关 %s: %w", f.Key, err)
	}
	if database.RDB != nil && database.IsRedisHealthy() {
		_ = database.RDB.Del(database.Ctx, cacheKeyPrefix+f.Key).Err()
	}
	return nil
}
