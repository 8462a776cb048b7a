package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

// secretKey 是服务器的HMAC签名密钥，在启动时由配置注入。
// 允许为空：此时所有签名校验直接失败（表现为未授权），而不是panic。
var secretKey []byte

// SignatureLength 是Base64编码后的HMAC-SHA256摘要长度。
// 32字节摘要经标准Base64编码后固定为44个字符，且以'='结尾。
const SignatureLength = 44

// SetSecret 注入签名密钥。空字符串表示密钥未配置。
func SetSecret(secret string) {
	if secret == "" {
		secretKey = nil
		fmt.Println("警告: 会话签名密钥未配置，所有会话校验都将失败。")
		return
	}
	secretKey = []byte(secret)
	fmt.Println("会话签名密钥已加载。")
}

// HasSecret 返回签名密钥是否已配置。
func HasSecret() bool {
	return len(secretKey) > 0
}

// SignatureFor 为一个给定的值生成HMAC-SHA256签名。
// 它返回的是签名的Base64编码字符串（标准字母表，带填充）。
func SignatureFor(value string) (string, error) {
	if !HasSecret() {
		return "", errors.New("签名密钥未配置")
	}
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(value))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// VerifySignature 验证一个给定的值和签名是否匹配。
// 任何异常（密钥未配置、Base64解码失败）都视为验证失败，而不是错误。
func VerifySignature(value string, signatureB64 string) bool {
	if !HasSecret() {
		return false
	}

	// 1. 解码传入的签名
	actualSignature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// 2. 重新计算预期的签名
	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(value))
	expectedSignature := mac.Sum(nil)

	// 3. 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
