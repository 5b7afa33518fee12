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

// ProviderConfig 定义上游邮件服务商（Guerrilla Mail）的接入配置
type ProviderConfig struct {
	APIURL        string        // 上游 API 入口，默认 Guerrilla 官方地址
	Agent         string        // 固定的客户端标识，上游要求每次调用携带
	ClientIP      string        // 固定的调用方 IP 占位值，上游要求每次调用携带
	Timeout       time.Duration // 单次上游调用的超时时间
	DefaultDomain string        // 未指定或不合法域名时回退使用的默认域名
	Domains       []string      // 允许创建邮箱的域名白名单
	CacheTTL      time.Duration // 邮件列表缓存时间，0 表示不缓存
}

// MailboxConfig 定义邮箱会话的本地生命周期配置
type MailboxConfig struct {
	TTL time.Duration // 邮箱有效期，默认 1 小时，与上游会话寿命对齐
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
}

// RedisConfig 定义 Redis 缓存服务配置（可选，留空则使用进程内缓存）
type RedisConfig struct {
	Address  string // Redis 服务地址，格式 "host:port"
	Password string // Redis 认证密码，留空表示无密码
	DB       int    // Redis 数据库编号，默认 0
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret        string        // JWT 签名密钥，必须至少 32 字符
	Issuer        string        // JWT 签发者标识，默认 "postdrop"
	AccessExpiry  time.Duration // 访问令牌有效期，默认 15 分钟
	RefreshExpiry time.Duration // 刷新令牌有效期，默认 7 天
}

// RateLimitConfig 定义按 IP 的请求限流配置
type RateLimitConfig struct {
	PerMinute int // 每个 IP 每分钟允许的请求数
	Burst     int // 突发容量
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig
	Provider  ProviderConfig
	Mailbox   MailboxConfig
	CORS      CORSConfig
	Log       LogConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

// 默认支持的 Guerrilla 域名，可通过环境变量覆盖
const defaultDomains = "guerrillamail.com,guerrillamail.net,guerrillamail.org,sharklasers.com,grr.la,pokemail.net,spam4.me"

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: POSTDROP_
// 例如: POSTDROP_SERVER_HOST, POSTDROP_JWT_SECRET
func Load() (*Config, error) {
	// 尝试加载 .env 文件（静默失败，因为 .env 文件是可选的）
	loadEnvFile()

	viper.SetEnvPrefix("postdrop")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("provider.api_url", "https://api.guerrillamail.com/ajax.php")
	viper.SetDefault("provider.agent", "PostdropAPI/1.0")
	viper.SetDefault("provider.client_ip", "127.0.0.1")
	viper.SetDefault("provider.timeout", "10s")
	viper.SetDefault("provider.domains", defaultDomains)
	viper.SetDefault("provider.default_domain", "guerrillamail.com")
	viper.SetDefault("provider.cache_ttl", "15s")
	viper.SetDefault("mailbox.ttl", "1h")
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("redis.address", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "postdrop")
	viper.SetDefault("jwt.access_expiry", "15m")
	viper.SetDefault("jwt.refresh_expiry", "168h")
	viper.SetDefault("ratelimit.per_minute", 100)
	viper.SetDefault("ratelimit.burst", 20)

	providerTimeout, err := time.ParseDuration(viper.GetString("provider.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid provider.timeout: %w", err)
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("provider.cache_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid provider.cache_ttl: %w", err)
	}

	mailboxTTL, err := time.ParseDuration(viper.GetString("mailbox.ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid mailbox.ttl: %w", err)
	}

	domainList := parseDomains(viper.GetString("provider.domains"))
	if len(domainList) == 0 {
		return nil, fmt.Errorf("provider.domains must not be empty")
	}

	defaultDomain := strings.ToLower(strings.TrimSpace(viper.GetString("provider.default_domain")))
	if !containsDomain(domainList, defaultDomain) {
		return nil, fmt.Errorf("provider.default_domain %q is not in provider.domains", defaultDomain)
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("jwt.access_expiry"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("jwt.refresh_expiry"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	jwtSecret := viper.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set POSTDROP_JWT_SECRET environment variable")
	}

	// JWT secret 必须至少 32 字符
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	perMinute := viper.GetInt("ratelimit.per_minute")
	if perMinute <= 0 {
		perMinute = 100
	}
	burst := viper.GetInt("ratelimit.burst")
	if burst <= 0 {
		burst = 20
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Provider: ProviderConfig{
			APIURL:        viper.GetString("provider.api_url"),
			Agent:         viper.GetString("provider.agent"),
			ClientIP:      viper.GetString("provider.client_ip"),
			Timeout:       providerTimeout,
			DefaultDomain: defaultDomain,
			Domains:       domainList,
			CacheTTL:      cacheTTL,
		},
		Mailbox: MailboxConfig{
			TTL: mailboxTTL,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			Issuer:        viper.GetString("jwt.issuer"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		RateLimit: RateLimitConfig{
			PerMinute: perMinute,
			Burst:     burst,
		},
	}

	return cfg, nil
}

// parseDomains 将逗号分隔的域名字符串解析为小写域名数组
func parseDomains(value string) []string {
	out := parseList(value)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
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

func containsDomain(domains []string, d string) bool {
	for _, item := range domains {
		if item == d {
			return true
		}
	}
	return false
}

// loadEnvFile 尝试加载 .env 文件
//
// 先尝试当前目录，再尝试父目录（从 backend/ 子目录运行时）。
// 文件不存在时静默失败；已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
