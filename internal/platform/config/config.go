package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Session     SessionConfig     `mapstructure:"session"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	// Driver 可选 "postgres" 或 "sqlite"。生产环境使用postgres（依赖咨询锁），
	// 本地开发和测试可以退化为sqlite。
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig 定义了会话Cookie相关的配置
type SessionConfig struct {
	// CookieName 是会话Cookie的名称，同时接受 "__Secure-" 前缀变体。
	CookieName string `mapstructure:"cookieName"`
	// Secret 是HMAC签名密钥。未配置时所有会话校验直接判定为未授权，而不是崩溃。
	Secret string `mapstructure:"secret"`
}

// LeaderboardConfig 定义了排行榜快照预热相关的配置
type LeaderboardConfig struct {
	// WarmCron 是后台快照预热任务的cron表达式
	WarmCron string `mapstructure:"warmCron"`
	// WarmKinds 是需要预热的排行榜kind列表，例如 coins:all
	WarmKinds []string `mapstructure:"warmKinds"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 设置关键项的默认值
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "braintraining.db")
	v.SetDefault("session.cookieName", "bt-session")
	v.SetDefault("leaderboard.warmCron", "@every 1m")
	v.SetDefault("leaderboard.warmKinds", []string{"coins:all", "level:all", "level:week"})

	// 4. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 SESSION_SECRET=xxx
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时仍然允许启动，全部走默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 7. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}
