package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lookupChain 返回一个kind的快照读取链：先读带scope的键，
// 再回退到迁移前的无scope旧键。回退键只读，永远不会被写入。
func lookupChain(kind string) []string {
	chain := []string{kind}
	if idx := strings.Index(kind, ":"); idx > 0 {
		chain = append(chain, kind[:idx])
	}
	return chain
}

// readSnapshot 按回退链读取快照并解析payload。
// 所有键都不存在时返回 (nil, nil, nil)。
func readSnapshot(kind string) (*RankingSnapshot, *SnapshotPayload, error) {
	for _, key := range lookupChain(kind) {
		var snap RankingSnapshot
		err := database.DB.First(&snap, "kind = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("无法读取快照 %s: %w", key, err)
		}

		var payload SnapshotPayload
		if err := json.Unmarshal([]byte(snap.Payload), &payload); err != nil {
			return nil, nil, fmt.Errorf("无法解析快照 %s 的payload: %w", key, err)
		}
		return &snap, &payload, nil
	}
	return nil, nil, nil
}

// writeSnapshot 在给定事务中整行覆盖写入快照（按kind upsert）。
// 调用方必须已经持有对应kind的咨询锁。
func writeSnapshot(tx *gorm.DB, kind string, computedAt time.Time, payload *SnapshotPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("无法序列化快照 %s 的payload: %w", kind, err)
	}

	snap := RankingSnapshot{
		Kind:       kind,
		ComputedAt: computedAt,
		Payload:    string(data),
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}},
		DoUpdates: clause.AssignmentColumns([]string{"computed_at", "payload"}),
	}).Create(&snap).Error
	if err != nil {
		return fmt.Errorf("无法写入快照 %s: %w", kind, err)
	}
	return nil
}

// isFresh 判定快照在给定配置下是否仍然新鲜。
// 过期、版本号变化、topN变化，任意一项不满足都要求重算。
func isFresh(snap *RankingSnapshot, payload *SnapshotPayload, cfg *RankingConfig, now time.Time) bool {
	if snap == nil || payload == nil {
		return false
	}
	if now.Sub(snap.ComputedAt) >= cfg.TTL {
		return false
	}
	return payload.Config.Version == cfg.Version && payload.Config.TopN == cfg.TopN
}
