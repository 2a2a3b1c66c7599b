package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	File        string // 日志文件路径，留空表示只输出到控制台
}

// DatabaseConfig 定义数据库连接配置（支持 MySQL 和 PostgreSQL）
type DatabaseConfig struct {
	Type            string        // 数据库类型: "mysql" 或 "postgres"，留空使用内存存储
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 缓存服务配置（用于开通邮箱的限流计数）
type RedisConfig struct {
	Address  string // Redis 服务地址，留空禁用限流
	Password string // Redis 认证密码
	DB       int    // Redis 数据库编号
}

// SupabaseConfig 定义外部身份提供方（Identity Gateway / Profile Store）配置
type SupabaseConfig struct {
	URL        string // 项目地址，如 https://xxxx.supabase.co
	ServiceKey string // service role key（用于 Profile Store 读写与远程校验）
	JWTSecret  string // 项目 JWT 密钥；配置后本地校验令牌，免一次网络往返
}

// MailConfig 定义企业邮箱服务商（新网）配置
type MailConfig struct {
	BaseURL         string // 服务商 API 地址
	CorpID          string // 企业 ID
	CorpSecret      string // 企业密钥
	Domain          string // 商务邮箱域名
	DefaultPassword string // 新建邮箱的初始密码
	DefaultQuota    int    // 新建邮箱空间（MB）
}

// VerifyConfig 定义 TikTok Bio 验证配置
type VerifyConfig struct {
	FetchTimeout time.Duration // 抓取主页的超时
	RatePerMin   int           // 每分钟允许的抓取次数
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Supabase SupabaseConfig
	Mail     MailConfig
	Verify   VerifyConfig
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: BINFLUENCER_
// 例如: BINFLUENCER_SERVER_PORT, BINFLUENCER_MAIL_CORPID
func Load() (*Config, error) {
	loadEnvFile()

	viper.SetEnvPrefix("binfluencer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("database.type", "") // 默认为空，使用内存存储
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("supabase.url", "")
	viper.SetDefault("supabase.service_key", "")
	viper.SetDefault("supabase.jwt_secret", "")
	viper.SetDefault("mail.base_url", "http://open.global-mail.cn")
	viper.SetDefault("mail.corpid", "")
	viper.SetDefault("mail.corpsecret", "")
	viper.SetDefault("mail.domain", "binfluencer.xyz")
	viper.SetDefault("mail.default_password", "")
	viper.SetDefault("mail.default_quota", 1024)
	viper.SetDefault("verify.fetch_timeout", "15s")
	viper.SetDefault("verify.rate_per_min", 10)

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	fetchTimeout, err := time.ParseDuration(viper.GetString("verify.fetch_timeout"))
	if err != nil {
		fetchTimeout = 15 * time.Second
	}

	mailDomain := strings.ToLower(strings.TrimSpace(viper.GetString("mail.domain")))
	if mailDomain == "" {
		return nil, fmt.Errorf("mail.domain must not be empty")
	}

	defaultQuota := viper.GetInt("mail.default_quota")
	if defaultQuota <= 0 {
		defaultQuota = 1024
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		Database: DatabaseConfig{
			Type:            viper.GetString("database.type"),
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Supabase: SupabaseConfig{
			URL:        strings.TrimRight(viper.GetString("supabase.url"), "/"),
			ServiceKey: viper.GetString("supabase.service_key"),
			JWTSecret:  viper.GetString("supabase.jwt_secret"),
		},
		Mail: MailConfig{
			BaseURL:         strings.TrimRight(viper.GetString("mail.base_url"), "/"),
			CorpID:          viper.GetString("mail.corpid"),
			CorpSecret:      viper.GetString("mail.corpsecret"),
			Domain:          mailDomain,
			DefaultPassword: viper.GetString("mail.default_password"),
			DefaultQuota:    defaultQuota,
		},
		Verify: VerifyConfig{
			FetchTimeout: fetchTimeout,
			RatePerMin:   viper.GetInt("verify.rate_per_min"),
		},
	}

	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceKey == "" {
		return nil, fmt.Errorf("supabase.url and supabase.service_key are required")
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（从 backend/ 子目录运行时）
//
// 文件不存在时静默跳过，已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
