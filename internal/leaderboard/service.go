package leaderboard

import (
	"fmt"
	"time"
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// BoardDTO 是公共榜单查询返回给控制器的数据包。
type BoardDTO struct {
	Kind       string
	Scope      string
	ComputedAt time.Time
	Config     SnapshotConfig
	Entries    []RankEntry
}

// MyRankDTO 是个人名次查询返回给控制器的数据包。
// MyRank 与 MyEntry 在周榜未入榜时为nil。
type MyRankDTO struct {
	Kind       string
	Scope      string
	ComputedAt time.Time
	MyRank     *int64
	MyEntry    *RankEntry
}

// --- Service Functions ---

// GetBoard 是公共top-N查询的核心业务逻辑。
// 快照新鲜则直接命中；过期则触发一次重算；重算被跳过（锁忙）或失败时
// 回退到既有快照平滑降级，只有在从未生成过快照时才返回 ErrBusy。
func GetBoard(flavor, scope string, cfg *RankingConfig) (*BoardDTO, error) {
	kind := KindFor(flavor, scope)
	now := time.Now()

	// 1. 尝试命中缓存快照（含旧键回退链）
	snap, payload, err := readSnapshot(kind)
	if err != nil {
		return nil, err
	}
	if isFresh(snap, payload, cfg, now) {
		return boardFromPayload(kind, scope, payload), nil
	}

	// 2. 快照过期或缺失，触发重算
	refreshed, refreshErr := RefreshSnapshot(kind, cfg)
	if refreshErr != nil {
		fmt.Printf("警告: %v\n", refreshErr)
	}

	// 3. 重算成功后重读主键快照；被跳过或失败则继续用旧快照
	if refreshed {
		snap, payload, err = readSnapshot(kind)
		if err != nil {
			return nil, err
		}
	}
	if payload != nil {
		return boardFromPayload(kind, scope, payload), nil
	}

	// 4. 没有任何快照可用，报告临时繁忙
	return nil, ErrBusy
}

// GetMyRank 是个人实时名次查询的核心业务逻辑。
// 它完全绕开快照缓存，按kind分派对应的实时查询。
func GetMyRank(flavor, scope string, userUUID string) (*MyRankDTO, error) {
	kind := KindFor(flavor, scope)
	now := time.Now()

	dto := &MyRankDTO{Kind: kind, Scope: scope, ComputedAt: now}

	switch kind {
	case KindFor(FlavorCoins, ScopeAll):
		rank, entry, err := MyCoinsRank(userUUID)
		if err != nil {
			return nil, err
		}
		dto.MyRank = &rank
		dto.MyEntry = entry
	case KindFor(FlavorLevel, ScopeAll):
		rank, entry, err := MyLevelRank(userUUID)
		if err != nil {
			return nil, err
		}
		dto.MyRank = &rank
		dto.MyEntry = entry
	case KindFor(FlavorLevel, ScopeWeek):
		rank, entry, err := MyWeeklyRank(userUUID, now)
		if err != nil {
			return nil, err
		}
		dto.MyRank = rank
		dto.MyEntry = entry
	default:
		return nil, fmt.Errorf("未知的排行榜kind: %s", kind)
	}

	return dto, nil
}

// boardFromPayload 将快照payload转为服务层DTO。
// kind与scope以请求为准，旧键回退命中时payload内嵌的kind可能是旧值。
func boardFromPayload(kind, scope string, payload *SnapshotPayload) *BoardDTO {
	return &BoardDTO{
		Kind:       kind,
		Scope:      scope,
		ComputedAt: payload.ComputedAt,
		Config:     payload.Config,
		Entries:    payload.Entries,
	}
}
