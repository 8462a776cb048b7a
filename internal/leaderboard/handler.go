package leaderboard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

// --- API响应模型 ---

type RankEntryResponse struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"userId"`
	Nickname   string  `json:"displayName"`
	AvatarURL  string  `json:"avatarUrl"`
	TotalScore int64   `json:"totalScore"`
	BrainLevel int     `json:"brainLevel"`
	XP         int64   `json:"xp"`
	BrainCoins int64   `json:"brainCoins"`
	WeeklyXP   int64   `json:"weeklyXp"`
	Medal      *string `json:"medal"`
}

type BoardAPIResponse struct {
	Kind       string              `json:"kind"`
	Scope      string              `json:"scope"`
	ComputedAt time.Time           `json:"computedAt"`
	Config     SnapshotConfig      `json:"config"`
	Entries    []RankEntryResponse `json:"entries"`
}

type MyRankAPIResponse struct {
	Kind       string             `json:"kind"`
	Scope      string             `json:"scope"`
	ComputedAt time.Time          `json:"computedAt"`
	MyRank     *int64             `json:"myRank"`
	MyEntry    *RankEntryResponse `json:"myEntry"`
}

// medalFor 派生奖牌字段: 第1名金、第2名银、第3名铜，其余为null。
func medalFor(rank int) *string {
	var medal string
	switch rank {
	case 1:
		medal = "gold"
	case 2:
		medal = "silver"
	case 3:
		medal = "bronze"
	default:
		return nil
	}
	return &medal
}

// formatEntry 将快照条目格式化为API响应条目。
func formatEntry(e RankEntry) RankEntryResponse {
	return RankEntryResponse{
		Rank:       e.Rank,
		UserID:     e.UserID,
		Nickname:   e.Nickname,
		AvatarURL:  e.AvatarURL,
		TotalScore: e.TotalScore,
		BrainLevel: e.BrainLevel,
		XP:         e.XP,
		BrainCoins: e.BrainCoins,
		WeeklyXP:   e.WeeklyXP,
		Medal:      medalFor(e.Rank),
	}
}

// setBoardCacheHeaders 设置公共榜单的缓存响应头。
// 隐藏访客模式下响应依赖访问者身份，禁止共享缓存；
// 否则允许短时间公共缓存，并给出与TTL同量级的stale-while-revalidate窗口。
func setBoardCacheHeaders(c *gin.Context, cfg *RankingConfig) {
	if cfg.HideGuests {
		c.Header("Cache-Control", "private, no-store")
		return
	}
	ttlSeconds := int(cfg.TTL.Seconds())
	maxAge := ttlSeconds / 4
	if maxAge < 5 {
		maxAge = 5
	}
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d", maxAge, ttlSeconds))
}

// serveBoard 是公共top-N榜单的共用处理流程。
func serveBoard(c *gin.Context, flavor, scope string) {
	// 1. 解析排行榜配置，开关缺失或关闭时整个功能不可用
	cfg, err := ResolveConfig()
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrDisabled.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取排行榜配置失败"})
		return
	}

	// 2. 隐藏访客模式下必须携带有效会话
	if cfg.HideGuests {
		if _, ok := session.VerifyRequest(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录或会话已过期"})
			return
		}
	}

	// 3. 查询榜单，锁忙且无历史快照时降级为繁忙响应
	board, err := GetBoard(flavor, scope, cfg)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrBusy.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜数据失败"})
		return
	}

	// 4. 格式化响应并派生奖牌
	entries := make([]RankEntryResponse, 0, len(board.Entries))
	for _, e := range board.Entries {
		entries = append(entries, formatEntry(e))
	}
	setBoardCacheHeaders(c, cfg)
	c.JSON(http.StatusOK, BoardAPIResponse{
		Kind:       board.Kind,
		Scope:      board.Scope,
		ComputedAt: board.ComputedAt,
		Config:     board.Config,
		Entries:    entries,
	})
}

// serveMyRank 是个人实时名次的共用处理流程。
// 会话校验由路由上的中间件完成。
func serveMyRank(c *gin.Context, flavor, scope string) {
	cfg, err := ResolveConfig()
	if err != nil {
		if errors.Is(err, ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrDisabled.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取排行榜配置失败"})
		return
	}

	if scope == ScopeWeek && !cfg.WeeklyEnabled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "周榜未开启"})
		return
	}

	u, ok := session.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "未登录或会话已过期"})
		return
	}

	dto, err := GetMyRank(flavor, scope, u.UUID)
	if err != nil {
		// 会话有效但用户行已被删除，属于数据竞态而不是服务端错误
		if errors.Is(err, ErrUserVanished) {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrUserVanished.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取个人名次失败"})
		return
	}

	var entry *RankEntryResponse
	if dto.MyEntry != nil {
		e := formatEntry(*dto.MyEntry)
		if dto.MyRank != nil {
			e.Rank = int(*dto.MyRank)
			e.Medal = medalFor(e.Rank)
		}
		entry = &e
	}
	c.Header("Cache-Control", "private, no-store")
	c.JSON(http.StatusOK, MyRankAPIResponse{
		Kind:       dto.Kind,
		Scope:      dto.Scope,
		ComputedAt: dto.ComputedAt,
		MyRank:     dto.MyRank,
		MyEntry:    entry,
	})
}

// --- 控制器函数 ---

// GetCoinsBoard 获取积分榜top-N。积分榜只有全时段一个scope。
func GetCoinsBoard(c *gin.Context) {
	scope := c.DefaultQuery("scope", ScopeAll)
	if scope != ScopeAll {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("积分榜不支持scope: %s", scope)})
		return
	}
	serveBoard(c, FlavorCoins, scope)
}

// GetLevelBoard 获取等级榜top-N，支持 all 和 week 两个scope。
func GetLevelBoard(c *gin.Context) {
	scope := c.DefaultQuery("scope", ScopeAll)
	if scope != ScopeAll && scope != ScopeWeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("等级榜不支持scope: %s", scope)})
		return
	}
	if scope == ScopeWeek {
		cfg, err := ResolveConfig()
		if err == nil && !cfg.WeeklyEnabled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "周榜未开启"})
			return
		}
	}
	serveBoard(c, FlavorLevel, scope)
}

// GetMyCoinsRank 获取当前用户在积分榜中的实时名次。
func GetMyCoinsRank(c *gin.Context) {
	serveMyRank(c, FlavorCoins, ScopeAll)
}

// GetMyLevelRank 获取当前用户在等级榜中的实时名次。
func GetMyLevelRank(c *gin.Context) {
	scope := c.DefaultQuery("scope", ScopeAll)
	if scope != ScopeAll && scope != ScopeWeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("等级榜不支持scope: %s", scope)})
		return
	}
	serveMyRank(c, FlavorLevel, scope)
}
