package leaderboard

// 本文件是"我的名次"的实时查询路径。它直接基于活表计算，
// 不读也不写快照缓存，因此即便公共快照过期，个人名次也是实时的。
//
// 三条路径的名次语义按kind有意保持不同，并在此处集中说明：
//   - 快照top-N: 行序名次（排序链已完全确定顺序，平分也得到连续名次）
//   - 全时段个人名次: 严格序名次，末位用uuid打破平局，保证每人名次唯一
//   - 周榜个人名次: 密集名次，完全相同的元组共享名次，下一名次只加一

import (
	"errors"
	"fmt"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
	"gorm.io/gorm"
)

// fetchUser 重新读取用户行。会话校验通过后用户仍可能已被删除，
// 这种竞态由调用方映射为404。
func fetchUser(userUUID string) (*user.User, error) {
	var u user.User
	err := database.DB.First(&u, "uuid = ?", userUUID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserVanished
	}
	if err != nil {
		return nil, fmt.Errorf("无法读取用户 %s: %w", userUUID, err)
	}
	return &u, nil
}

// MyCoinsRank 计算用户在全时段积分榜中的严格序名次。
// 名次 = 1 + 严格排在自己前面的用户数，
// 比较链为 (总积分, XP, uuid) 的逐级严格大于。
func MyCoinsRank(userUUID string) (int64, *RankEntry, error) {
	u, err := fetchUser(userUUID)
	if err != nil {
		return 0, nil, err
	}

	// 1. 自己的总积分
	var myTotal int64
	err = database.DB.Raw(`
		SELECT COALESCE(SUM(score), 0) FROM training_sessions WHERE user_uuid = ?`,
		u.UUID).Scan(&myTotal).Error
	if err != nil {
		return 0, nil, fmt.Errorf("无法计算用户总积分: %w", err)
	}

	// 2. 严格排在自己前面的用户数
	var ahead int64
	err = database.DB.Raw(`
		SELECT COUNT(*) FROM (
			SELECT u.uuid, u.xp, COALESCE(SUM(t.score), 0) AS total_score
			FROM users u
			LEFT JOIN training_sessions t ON t.user_uuid = u.uuid
			GROUP BY u.uuid, u.xp
		) o
		WHERE o.total_score > ?
		   OR (o.total_score = ? AND o.xp > ?)
		   OR (o.total_score = ? AND o.xp = ? AND o.uuid > ?)`,
		myTotal, myTotal, u.XP, myTotal, u.XP, u.UUID).Scan(&ahead).Error
	if err != nil {
		return 0, nil, fmt.Errorf("积分榜名次查询失败: %w", err)
	}

	entry := entryForUser(u)
	entry.TotalScore = myTotal
	return ahead + 1, entry, nil
}

// MyLevelRank 计算用户在全时段等级榜中的严格序名次。
// 比较链为 (等级, XP, 脑力币, uuid) 的逐级严格大于。
func MyLevelRank(userUUID string) (int64, *RankEntry, error) {
	u, err := fetchUser(userUUID)
	if err != nil {
		return 0, nil, err
	}

	var ahead int64
	err = database.DB.Raw(`
		SELECT COUNT(*) FROM users o
		WHERE o.brain_level > ?
		   OR (o.brain_level = ? AND o.xp > ?)
		   OR (o.brain_level = ? AND o.xp = ? AND o.brain_coins > ?)
		   OR (o.brain_level = ? AND o.xp = ? AND o.brain_coins = ? AND o.uuid > ?)`,
		u.BrainLevel,
		u.BrainLevel, u.XP,
		u.BrainLevel, u.XP, u.BrainCoins,
		u.BrainLevel, u.XP, u.BrainCoins, u.UUID).Scan(&ahead).Error
	if err != nil {
		return 0, nil, fmt.Errorf("等级榜名次查询失败: %w", err)
	}

	return ahead + 1, entryForUser(u), nil
}

// weeklyRankRow 是周榜名次查询的扫描目标。
type weeklyRankRow struct {
	Rnk      int64
	WeeklyXP int64
}

// MyWeeklyRank 计算用户在当前ISO周榜中的密集名次。
// 本周没有任何活动记录时返回 (nil, nil)，表示未入榜。
func MyWeeklyRank(userUUID string, now time.Time) (*int64, *RankEntry, error) {
	u, err := fetchUser(userUUID)
	if err != nil {
		return nil, nil, err
	}

	start, end := WeekWindowUTC(now)
	var rows []weeklyRankRow
	err = database.DB.Raw(`
		SELECT rnk, weekly_xp FROM (
			SELECT d.user_uuid,
			       SUM(d.xp_gained) AS weekly_xp,
			       DENSE_RANK() OVER (
			           ORDER BY SUM(d.xp_gained) DESC, u.brain_level DESC,
			                    u.xp DESC, u.brain_coins DESC, u.updated_at DESC
			       ) AS rnk
			FROM daily_activities d
			JOIN users u ON u.uuid = d.user_uuid
			WHERE d.activity_date >= ? AND d.activity_date < ?
			GROUP BY d.user_uuid, u.brain_level, u.xp, u.brain_coins, u.updated_at
		) ranked
		WHERE user_uuid = ?`,
		start, end, u.UUID).Scan(&rows).Error
	if err != nil {
		return nil, nil, fmt.Errorf("周榜名次查询失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	entry := entryForUser(u)
	entry.WeeklyXP = rows[0].WeeklyXP
	rank := rows[0].Rnk
	return &rank, entry, nil
}

// entryForUser 用用户行构造一个无名次的榜单条目。
func entryForUser(u *user.User) *RankEntry {
	return &RankEntry{
		UserID:     u.UUID,
		Nickname:   u.Nickname,
		AvatarURL:  u.AvatarURL,
		BrainLevel: u.BrainLevel,
		XP:         u.XP,
		BrainCoins: u.BrainCoins,
	}
}
