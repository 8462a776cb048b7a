package training

import (
	"time"
)

// TrainingSession 记录一局训练游戏的结算结果。
// 全时段积分排行榜由这张表的得分聚合而来。
type TrainingSession struct {
	ID       uint   `gorm:"primarykey"`
	UserUUID string `gorm:"index;type:varchar(36)"`

	// GameKey 标识游戏类型，例如 dual-n-back。
	GameKey string `gorm:"type:varchar(32)"`

	// Score 是本局获得的积分。
	Score int64

	CreatedAt time.Time
}

// DailyActivity 按天汇总用户的训练活动。
// 周榜的XP贡献在ISO周窗口内对这张表求和。
type DailyActivity struct {
	ID       uint   `gorm:"primarykey"`
	UserUUID string `gorm:"uniqueIndex:idx_user_day;type:varchar(36)"`

	// ActivityDate 是UTC日期（当天零点）。
	ActivityDate time.Time `gorm:"uniqueIndex:idx_user_day"`

	// XPGained 是当天累计获得的经验值。
	XPGained int64

	UpdatedAt time.Time
}
