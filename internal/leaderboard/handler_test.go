package leaderboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter 按正式路由的结构注册排行榜端点。
func newTestRouter() *gin.Engine {
	r := gin.New()
	g := r.Group("/api/leaderboard")
	g.GET("/coins", GetCoinsBoard)
	g.GET("/level", GetLevelBoard)
	auth := g.Group("")
	auth.Use(session.RequireUserMiddleware())
	auth.GET("/coins/me", GetMyCoinsRank)
	auth.GET("/level/me", GetMyLevelRank)
	return r
}

// doRequest 发起一次测试请求，cookieValue非空时携带会话Cookie。
func doRequest(t *testing.T, r *gin.Engine, path, cookieValue string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{
			Name:  config.Cfg.Session.CookieName,
			Value: url.QueryEscape(cookieValue),
		})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// loginUser 为已铺设的用户签发会话并返回Cookie值。
func loginUser(t *testing.T, userUUID string) string {
	t.Helper()
	cookie, err := session.Create(userUUID, time.Hour)
	require.NoError(t, err)
	return cookie
}

func TestBoardEndpointDisabled(t *testing.T) {
	setupTest(t)
	r := newTestRouter()

	w := doRequest(t, r, "/api/leaderboard/coins", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBoardEndpointBadScope(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, "")
	r := newTestRouter()

	// 积分榜只有全时段一个scope
	w := doRequest(t, r, "/api/leaderboard/coins?scope=week", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, "/api/leaderboard/level?scope=daily", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLevelWeekEndpointRequiresWeeklyEnabled(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, `{"weeklyEnabled":false}`)
	r := newTestRouter()

	w := doRequest(t, r, "/api/leaderboard/level?scope=week", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBoardEndpointServesMedals(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, "")
	seedThreeUsers(t)
	r := newTestRouter()

	w := doRequest(t, r, "/api/leaderboard/coins", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body BoardAPIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "coins:all", body.Kind)
	require.Len(t, body.Entries, 3)
	require.NotNil(t, body.Entries[0].Medal)
	assert.Equal(t, "gold", *body.Entries[0].Medal)
	require.NotNil(t, body.Entries[2].Medal)
	assert.Equal(t, "bronze", *body.Entries[2].Medal)

	// 公共榜单允许短时间共享缓存
	assert.Equal(t, "public, max-age=15, stale-while-revalidate=60", w.Header().Get("Cache-Control"))
}

func TestBoardEndpointHideGuests(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, `{"hideGuests":true}`)
	seedThreeUsers(t)
	r := newTestRouter()

	// 未携带会话时拒绝访问
	w := doRequest(t, r, "/api/leaderboard/coins", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 携带有效会话后放行，但响应禁止共享缓存
	cookie := loginUser(t, "0190aaaa-1111-7000-8000-000000000001")
	w = doRequest(t, r, "/api/leaderboard/coins", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))
}

func TestMyRankEndpointRequiresSession(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, "")
	r := newTestRouter()

	w := doRequest(t, r, "/api/leaderboard/coins/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyRankEndpointEndToEnd(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, "")
	seedThreeUsers(t)
	r := newTestRouter()

	cookie := loginUser(t, "0190aaaa-1111-7000-8000-000000000003")
	w := doRequest(t, r, "/api/leaderboard/coins/me", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "private, no-store", w.Header().Get("Cache-Control"))

	var body MyRankAPIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.MyRank)
	assert.Equal(t, int64(3), *body.MyRank)
	require.NotNil(t, body.MyEntry)
	assert.Equal(t, int64(50), body.MyEntry.TotalScore)
	require.NotNil(t, body.MyEntry.Medal)
	assert.Equal(t, "bronze", *body.MyEntry.Medal)
}

func TestMyRankEndpointWeekDisabled(t *testing.T) {
	setupTest(t)
	seedFlag(t, true, `{"weeklyEnabled":false}`)
	seedThreeUsers(t)
	r := newTestRouter()

	cookie := loginUser(t, "0190aaaa-1111-7000-8000-000000000001")
	w := doRequest(t, r, "/api/leaderboard/level/me?scope=week", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
