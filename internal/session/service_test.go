package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.Cfg = &config.Config{}
	config.Cfg.Session.CookieName = "bt-session"
	token.SetSecret("session-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &Session{}))
	database.DB = db
}

func seedUser(t *testing.T, uuid string) *user.User {
	t.Helper()
	u := &user.User{UUID: uuid, Nickname: "tester", BrainLevel: 3, XP: 120, BrainCoins: 50}
	require.NoError(t, database.DB.Create(u).Error)
	return u
}

// contextWithCookie 构造一个携带指定Cookie的Gin上下文。
// Cookie值按SetCookie的约定做URL转义。
func contextWithCookie(name, value string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if name != "" {
		c.Request.AddCookie(&http.Cookie{Name: name, Value: url.QueryEscape(value)})
	}
	return c
}

func TestVerifyRequestValidCookie(t *testing.T) {
	setupTest(t)
	seedUser(t, "0190aaaa-0000-7000-8000-000000000001")

	cookieValue, err := Create("0190aaaa-0000-7000-8000-000000000001", time.Hour)
	require.NoError(t, err)

	c := contextWithCookie("bt-session", cookieValue)
	u, ok := VerifyRequest(c)
	require.True(t, ok)
	assert.Equal(t, "0190aaaa-0000-7000-8000-000000000001", u.UUID)
}

func TestVerifyRequestSecureCookieVariant(t *testing.T) {
	setupTest(t)
	seedUser(t, "0190aaaa-0000-7000-8000-000000000002")

	cookieValue, err := Create("0190aaaa-0000-7000-8000-000000000002", time.Hour)
	require.NoError(t, err)

	c := contextWithCookie("__Secure-bt-session", cookieValue)
	u, ok := VerifyRequest(c)
	require.True(t, ok)
	assert.Equal(t, "0190aaaa-0000-7000-8000-000000000002", u.UUID)
}

func TestVerifyRequestMissingCookie(t *testing.T) {
	setupTest(t)

	c := contextWithCookie("", "")
	_, ok := VerifyRequest(c)
	assert.False(t, ok)
}

func TestVerifyRequestMalformedValues(t *testing.T) {
	setupTest(t)
	seedUser(t, "0190aaaa-0000-7000-8000-000000000003")

	cookieValue, err := Create("0190aaaa-0000-7000-8000-000000000003", time.Hour)
	require.NoError(t, err)
	dot := strings.LastIndex(cookieValue, ".")
	value, signature := cookieValue[:dot], cookieValue[dot+1:]

	cases := map[string]string{
		"没有分隔点":   value + signature,
		"点在开头":    "." + signature,
		"签名长度不足":  value + "." + signature[:20],
		"签名不以=结尾": value + "." + signature[:43] + "A",
		"签名被篡改":   value + ".AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
	}
	for name, raw := range cases {
		c := contextWithCookie("bt-session", raw)
		_, ok := VerifyRequest(c)
		assert.False(t, ok, name)
	}
}

func TestVerifyRequestExpiredSession(t *testing.T) {
	setupTest(t)
	seedUser(t, "0190aaaa-0000-7000-8000-000000000004")

	cookieValue, err := Create("0190aaaa-0000-7000-8000-000000000004", -time.Minute)
	require.NoError(t, err)

	c := contextWithCookie("bt-session", cookieValue)
	_, ok := VerifyRequest(c)
	assert.False(t, ok)
}

func TestVerifyRequestUnconfiguredSecret(t *testing.T) {
	setupTest(t)
	seedUser(t, "0190aaaa-0000-7000-8000-000000000005")

	cookieValue, err := Create("0190aaaa-0000-7000-8000-000000000005", time.Hour)
	require.NoError(t, err)

	// 密钥未配置时一律未授权，而不是崩溃
	token.SetSecret("")
	c := contextWithCookie("bt-session", cookieValue)
	_, ok := VerifyRequest(c)
	assert.False(t, ok)
}

func TestVerifyRequestUserDeleted(t *testing.T) {
	setupTest(t)
	u := seedUser(t, "0190aaaa-0000-7000-8000-000000000006")

	cookieValue, err := Create(u.UUID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, database.DB.Delete(&user.User{}, "uuid = ?", u.UUID).Error)

	c := contextWithCookie("bt-session", cookieValue)
	_, ok := VerifyRequest(c)
	assert.False(t, ok)
}
