package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/config"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/platform/database"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/internal/user"
	"github.com/2019xiaopeng/BrainTrainingSystem-sub001/pkg/token"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SecureCookiePrefix 是浏览器"安全Cookie"命名约定的前缀。
const SecureCookiePrefix = "__Secure-"

// readSessionCookie 从请求中提取会话Cookie的原始值。
// 先查配置的Cookie名，再查带 __Secure- 前缀的变体。
func readSessionCookie(c *gin.Context) (string, bool) {
	name := config.Cfg.Session.CookieName
	if raw, err := c.Cookie(name); err == nil && raw != "" {
		return raw, true
	}
	if raw, err := c.Cookie(SecureCookiePrefix + name); err == nil && raw != "" {
		return raw, true
	}
	return "", false
}

// splitSignedValue 将Cookie原始值在最后一个'.'处拆分为 签名前值 和 签名。
// 签名必须恰好44个字符且以'='结尾（32字节HMAC-SHA256摘要的标准Base64编码），
// 否则视为格式非法。
func splitSignedValue(raw string) (value string, signature string, ok bool) {
	idx := strings.LastIndex(raw, ".")
	if idx < 1 {
		return "", "", false
	}
	value, signature = raw[:idx], raw[idx+1:]
	if len(signature) != token.SignatureLength || !strings.HasSuffix(signature, "=") {
		return "", "", false
	}
	return value, signature, true
}

// VerifyRequest 校验请求中的会话Cookie，返回已认证的用户。
// 密钥未配置、Cookie缺失、签名非法、签名校验失败、会话不存在或已过期，
// 一律返回 ok=false，绝不向上抛错。
func VerifyRequest(c *gin.Context) (*user.User, bool) {
	// 1. 密钥未配置时直接判定为未授权
	if !token.HasSecret() {
		return nil, false
	}

	// 2. 提取并拆分Cookie
	raw, found := readSessionCookie(c)
	if !found {
		return nil, false
	}
	value, signature, ok := splitSignedValue(raw)
	if !ok {
		return nil, false
	}

	// 3. 校验HMAC签名
	if !token.VerifySignature(value, signature) {
		return nil, false
	}

	// 4. 查找未过期的会话并连接用户
	var sess Session
	err := database.DB.Where("token = ? AND expires_at > ?", value, time.Now()).First(&sess).Error
	if err != nil {
		return nil, false
	}
	var u user.User
	if err := database.DB.First(&u, "uuid = ?", sess.UserUUID).Error; err != nil {
		return nil, false
	}
	return &u, true
}

// Create 为指定用户签发一个新会话，返回可直接写入Cookie的完整签名值。
// 登录/验证码流程在别的子系统中完成，这里只负责会话的落库与签名。
func Create(userUUID string, ttl time.Duration) (string, error) {
	tokenID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成会话Token: %w", err)
	}

	sess := Session{
		Token:     tokenID.String(),
		UserUUID:  userUUID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := database.DB.Create(&sess).Error; err != nil {
		return "", fmt.Errorf("无法写入会话记录: %w", err)
	}

	signature, err := token.SignatureFor(sess.Token)
	if err != nil {
		return "", fmt.Errorf("无法签名会话Token: %w", err)
	}
	return sess.Token + "." + signature, nil
}
