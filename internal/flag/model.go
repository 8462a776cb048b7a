package flag

import (
	"time"
)

// FeatureFlag 定义了特性开关在数据库中的持久化模型。
// Payload 是一段JSON文本，由各功能模块自行解析。
type FeatureFlag struct {
	Key     string `gorm:"primarykey;type:varchar(64)"`
	Enabled bool
	Payload string `gorm:"type:text"`

	UpdatedAt time.Time
}
