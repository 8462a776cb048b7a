package leaderboard

import (
	"fmt"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/lock"
	"gorm.io/gorm"
)

// lockNameFor 返回一个kind对应的咨询锁名。
func lockNameFor(kind string) string {
	return "leaderboard:" + kind
}

// aggregateRow 是聚合查询的扫描目标。
type aggregateRow struct {
	UserUUID   string
	Nickname   string
	AvatarURL  string
	BrainLevel int
	XP         int64
	BrainCoins int64
	TotalScore int64
	WeeklyXP   int64
}

// RefreshSnapshot 重算并持久化一个kind的top-N快照。
// 返回值refreshed=false且err=nil表示锁被其他进程持有，本次重算被跳过；
// 调用方应回退到既有快照或向客户端返回繁忙。
// 计算和写入在同一事务中完成，锁随事务结束自动释放，不存在部分写入。
func RefreshSnapshot(kind string, cfg *RankingConfig) (refreshed bool, err error) {
	now := time.Now()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// 1. 非阻塞获取咨询锁，竞争失败直接放弃本次重算
		release, ok, err := lock.Default.TryAcquire(tx, lockNameFor(kind))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		defer release()

		// 2. 在锁的保护下计算top-N
		rows, err := computeTopRows(tx, kind, cfg.TopN, now)
		if err != nil {
			return err
		}

		// 3. 行序定名次：rank = 下标+1，积分相同也得到连续的不同名次
		scope := scopeOf(kind)
		entries := make([]RankEntry, 0, len(rows))
		for i, r := range rows {
			entries = append(entries, RankEntry{
				Rank:       i + 1,
				UserID:     r.UserUUID,
				Nickname:   r.Nickname,
				AvatarURL:  r.AvatarURL,
				TotalScore: r.TotalScore,
				BrainLevel: r.BrainLevel,
				XP:         r.XP,
				BrainCoins: r.BrainCoins,
				WeeklyXP:   r.WeeklyXP,
			})
		}

		// 4. 构建payload并整行覆盖写入，与锁同事务提交
		payload := &SnapshotPayload{
			ComputedAt: now,
			Kind:       kind,
			Scope:      scope,
			Config:     SnapshotConfig{TopN: cfg.TopN, Version: cfg.Version},
			Entries:    entries,
		}
		if err := writeSnapshot(tx, kind, now, payload); err != nil {
			return err
		}
		refreshed = true
		return nil
	})

	if err != nil {
		return false, fmt.Errorf("快照 %s 重算失败: %w", kind, err)
	}
	return refreshed, nil
}

// scopeOf 从kind中取出scope部分。
func scopeOf(kind string) string {
	for i := 0; i < len(kind); i++ {
		if kind[i] == ':' {
			return kind[i+1:]
		}
	}
	return ScopeAll
}

// computeTopRows 按kind分派对应的聚合查询。
func computeTopRows(tx *gorm.DB, kind string, topN int, now time.Time) ([]aggregateRow, error) {
	switch kind {
	case KindFor(FlavorCoins, ScopeAll):
		return topRowsByTotalScore(tx, topN)
	case KindFor(FlavorLevel, ScopeAll):
		return topRowsByLevel(tx, topN)
	case KindFor(FlavorLevel, ScopeWeek):
		return topRowsByWeeklyXP(tx, topN, now)
	default:
		return nil, fmt.Errorf("未知的排行榜kind: %s", kind)
	}
}

// topRowsByTotalScore 按训练总积分聚合。
// LEFT JOIN保证没有任何对局的用户也以0分入榜。
func topRowsByTotalScore(tx *gorm.DB, topN int) ([]aggregateRow, error) {
	var rows []aggregateRow
	err := tx.Raw(`
		SELECT u.uuid AS user_uuid, u.nickname, u.avatar_url,
		       u.brain_level, u.xp, u.brain_coins,
		       COALESCE(SUM(t.score), 0) AS total_score
		FROM users u
		LEFT JOIN training_sessions t ON t.user_uuid = u.uuid
		GROUP BY u.uuid, u.nickname, u.avatar_url, u.brain_level, u.xp, u.brain_coins, u.updated_at
		ORDER BY total_score DESC, u.xp DESC, u.brain_level DESC, u.updated_at DESC
		LIMIT ?`, topN).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("积分榜聚合查询失败: %w", err)
	}
	return rows, nil
}

// topRowsByLevel 按脑力等级排序。
func topRowsByLevel(tx *gorm.DB, topN int) ([]aggregateRow, error) {
	var rows []aggregateRow
	err := tx.Raw(`
		SELECT u.uuid AS user_uuid, u.nickname, u.avatar_url,
		       u.brain_level, u.xp, u.brain_coins
		FROM users u
		ORDER BY u.brain_level DESC, u.xp DESC, u.brain_coins DESC, u.updated_at DESC
		LIMIT ?`, topN).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("等级榜聚合查询失败: %w", err)
	}
	return rows, nil
}

// topRowsByWeeklyXP 在当前ISO周窗口内按XP增量聚合。
// 本周没有任何活动记录的用户不入周榜。
func topRowsByWeeklyXP(tx *gorm.DB, topN int, now time.Time) ([]aggregateRow, error) {
	start, end := WeekWindowUTC(now)
	var rows []aggregateRow
	err := tx.Raw(`
		SELECT u.uuid AS user_uuid, u.nickname, u.avatar_url,
		       u.brain_level, u.xp, u.brain_coins,
		       COALESCE(SUM(d.xp_gained), 0) AS weekly_xp
		FROM daily_activities d
		JOIN users u ON u.uuid = d.user_uuid
		WHERE d.activity_date >= ? AND d.activity_date < ?
		GROUP BY u.uuid, u.nickname, u.avatar_url, u.brain_level, u.xp, u.brain_coins, u.updated_at
		ORDER BY weekly_xp DESC, u.brain_level DESC, u.xp DESC, u.brain_coins DESC, u.updated_at DESC
		LIMIT ?`, start, end, topN).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("周榜聚合查询失败: %w", err)
	}
	return rows, nil
}
