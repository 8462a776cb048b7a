package leaderboard

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/flag"
)

// FlagKey 是控制整个排行榜功能的特性开关键。
const FlagKey = "leaderboard"

// 配置的取值边界与默认值。
const (
	defaultTopN = 10
	minTopN     = 1
	maxTopN     = 100

	defaultTTL = 60 * time.Second
	minTTL     = 5 * time.Second
	maxTTL     = 3600 * time.Second
)

// 排行榜对外的失败类别。
var (
	// ErrDisabled 表示特性开关缺失或关闭，整个功能不可用。
	ErrDisabled = errors.New("排行榜功能未开启")
	// ErrBusy 表示快照正在被其他进程重算且没有任何历史快照可用。
	ErrBusy = errors.New("排行榜暂时繁忙，请稍后重试")
	// ErrUserVanished 表示会话校验通过但用户行已不存在。
	ErrUserVanished = errors.New("用户不存在")
)

// RankingConfig 是解析并收敛边界后的排行榜运行配置。
// 每次请求都从特性开关重新解析，不依赖任何进程内可变全局量。
type RankingConfig struct {
	TopN          int
	Version       int
	TTL           time.Duration
	HideGuests    bool
	WeeklyEnabled bool
}

// flagPayload 是特性开关payload的原始结构。
// TTL同时接受毫秒和秒两种字段，毫秒优先。
type flagPayload struct {
	TopN               int  `json:"topN"`
	Version            int  `json:"version"`
	SnapshotTTLMs      int64 `json:"snapshotTtlMs"`
	SnapshotTTLSeconds int64 `json:"snapshotTtlSeconds"`
	HideGuests         bool `json:"hideGuests"`
	WeeklyEnabled      bool `json:"weeklyEnabled"`
}

// ResolveConfig 读取排行榜特性开关并解析为运行配置。
// 开关行缺失或关闭时返回 ErrDisabled。
func ResolveConfig() (*RankingConfig, error) {
	f, err := flag.Get(FlagKey)
	if err != nil {
		return nil, err
	}
	if f == nil || !f.Enabled {
		return nil, ErrDisabled
	}

	var p flagPayload
	if f.Payload != "" {
		// payload解析失败按默认配置处理，而不是让整个功能不可用
		_ = json.Unmarshal([]byte(f.Payload), &p)
	}

	cfg := &RankingConfig{
		TopN:          p.TopN,
		Version:       p.Version,
		HideGuests:    p.HideGuests,
		WeeklyEnabled: p.WeeklyEnabled,
	}

	// 收敛topN边界
	if cfg.TopN == 0 {
		cfg.TopN = defaultTopN
	}
	if cfg.TopN < minTopN {
		cfg.TopN = minTopN
	}
	if cfg.TopN > maxTopN {
		cfg.TopN = maxTopN
	}

	// 收敛TTL边界，毫秒字段优先
	switch {
	case p.SnapshotTTLMs > 0:
		cfg.TTL = time.Duration(p.SnapshotTTLMs) * time.Millisecond
	case p.SnapshotTTLSeconds > 0:
		cfg.TTL = time.Duration(p.SnapshotTTLSeconds) * time.Second
	default:
		cfg.TTL = defaultTTL
	}
	if cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	if cfg.TTL > maxTTL {
		cfg.TTL = maxTTL
	}

	return cfg, nil
}
