package leaderboard

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/flag"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/lock"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/session"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/training"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTest 为每个测试准备一个独立的内存数据库和干净的锁状态。
func setupTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Cfg = &config.Config{}
	config.Cfg.Session.CookieName = "bt-session"
	token.SetSecret("leaderboard-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &session.Session{},
		&training.TrainingSession{}, &training.DailyActivity{},
		&flag.FeatureFlag{}, &RankingSnapshot{},
	))
	database.DB = db
	lock.Default = &lock.LocalLocker{}
}

// seedUser 写入一个用户并把updated_at固定到给定时间，保证排序可控。
func seedUser(t *testing.T, uuid, nickname string, level int, xp, coins int64, updatedAt time.Time) *user.User {
	t.Helper()
	u := &user.User{UUID: uuid, Nickname: nickname, BrainLevel: level, XP: xp, BrainCoins: coins}
	require.NoError(t, database.DB.Create(u).Error)
	require.NoError(t, database.DB.Model(u).UpdateColumn("updated_at", updatedAt).Error)
	u.UpdatedAt = updatedAt
	return u
}

// seedScore 为用户追加一局训练得分。
func seedScore(t *testing.T, userUUID string, score int64) {
	t.Helper()
	require.NoError(t, database.DB.Create(&training.TrainingSession{
		UserUUID: userUUID,
		GameKey:  "dual-n-back",
		Score:    score,
	}).Error)
}

// seedActivity 为用户写入一条当天的活动记录。
func seedActivity(t *testing.T, userUUID string, day time.Time, xpGained int64) {
	t.Helper()
	require.NoError(t, database.DB.Create(&training.DailyActivity{
		UserUUID:     userUUID,
		ActivityDate: day,
		XPGained:     xpGained,
	}).Error)
}

// seedFlag 写入排行榜特性开关。
func seedFlag(t *testing.T, enabled bool, payload string) {
	t.Helper()
	require.NoError(t, flag.Set(&flag.FeatureFlag{
		Key:     FlagKey,
		Enabled: enabled,
		Payload: payload,
	}))
}

// testConfig 返回一份固定的运行配置，避免测试依赖开关解析。
func testConfig() *RankingConfig {
	return &RankingConfig{
		TopN:          10,
		Version:       1,
		TTL:           60 * time.Second,
		WeeklyEnabled: true,
	}
}
