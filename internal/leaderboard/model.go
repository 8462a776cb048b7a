package leaderboard

import (
	"time"
)

// 排行榜的flavor与scope。kind是两者的组合，例如 "coins:all"。
const (
	FlavorCoins = "coins"
	FlavorLevel = "level"

	ScopeAll  = "all"
	ScopeWeek = "week"
)

// KindFor 组合flavor和scope得到快照的kind。
func KindFor(flavor, scope string) string {
	return flavor + ":" + scope
}

// RankingSnapshot 定义了快照缓存表的持久化模型。
// 每个kind至多一行；由聚合器在咨询锁的保护下整行覆盖写入，普通请求并发读取。
type RankingSnapshot struct {
	Kind       string `gorm:"primarykey;type:varchar(32)"`
	ComputedAt time.Time
	Payload    string `gorm:"type:text"`
}

// SnapshotConfig 是嵌入快照payload的配置指纹。
// 线上配置的version或topN与它不一致时，快照即视为失效。
type SnapshotConfig struct {
	TopN    int `json:"topN"`
	Version int `json:"version"`
}

// RankEntry 是快照payload中的单个上榜条目。
// rank为1起始的行序名次；medal不落库，在响应时派生。
type RankEntry struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"userId"`
	Nickname   string `json:"displayName"`
	AvatarURL  string `json:"avatarUrl"`
	TotalScore int64  `json:"totalScore"`
	BrainLevel int    `json:"brainLevel"`
	XP         int64  `json:"xp"`
	BrainCoins int64  `json:"brainCoins"`
	WeeklyXP   int64  `json:"weeklyXp"`
}

// SnapshotPayload 是快照payload的完整JSON结构。
type SnapshotPayload struct {
	ComputedAt time.Time      `json:"computedAt"`
	Kind       string         `json:"kind"`
	Scope      string         `json:"scope"`
	Config     SnapshotConfig `json:"config"`
	Entries    []RankEntry    `json:"entries"`
}
