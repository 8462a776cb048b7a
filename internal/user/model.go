package user

import (
	"time"
)

// User 定义了用户在数据库中的持久化模型。
// 它存储排行榜所需的核心成长数据。
type User struct {
	// UUID 是用户的主键。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// Nickname 是展示在排行榜上的昵称。
	Nickname string `gorm:"type:varchar(64)"`

	// AvatarURL 是用户头像地址。
	AvatarURL string

	// BrainLevel 是用户当前的脑力等级。
	BrainLevel int `gorm:"index"`

	// XP 是用户累计的经验值。
	XP int64

	// BrainCoins 是用户当前持有的脑力币余额。
	BrainCoins int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
