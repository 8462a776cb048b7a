package session

import (
	"time"
)

// Session 定义了活跃会话在数据库中的持久化模型。
// Token 是Cookie中签名部分之前的原始值，签名本身不落库。
type Session struct {
	Token     string `gorm:"primarykey;type:varchar(64)"`
	UserUUID  string `gorm:"index;type:varchar(36)"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}
