package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// 保存原始环境变量
	originalEnvs := make(map[string]string)
	envKeys := []string{
		"POSTDROP_JWT_SECRET",
		"POSTDROP_SERVER_HOST",
		"POSTDROP_SERVER_PORT",
		"POSTDROP_PROVIDER_API_URL",
		"POSTDROP_PROVIDER_DOMAINS",
		"POSTDROP_PROVIDER_DEFAULT_DOMAIN",
		"POSTDROP_PROVIDER_TIMEOUT",
		"POSTDROP_MAILBOX_TTL",
		"POSTDROP_LOG_LEVEL",
		"POSTDROP_LOG_DEVELOPMENT",
	}

	for _, key := range envKeys {
		originalEnvs[key] = os.Getenv(key)
	}

	// 测试后恢复环境变量
	defer func() {
		for key, value := range originalEnvs {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	t.Run("加载默认配置成功", func(t *testing.T) {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}

		// 设置必需的JWT密钥
		os.Setenv("POSTDROP_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证默认值
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "https://api.guerrillamail.com/ajax.php", cfg.Provider.APIURL)
		assert.Equal(t, "PostdropAPI/1.0", cfg.Provider.Agent)
		assert.Equal(t, "127.0.0.1", cfg.Provider.ClientIP)
		assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
		assert.Equal(t, "guerrillamail.com", cfg.Provider.DefaultDomain)
		assert.Contains(t, cfg.Provider.Domains, "sharklasers.com")
		assert.Equal(t, time.Hour, cfg.Mailbox.TTL)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "postdrop", cfg.JWT.Issuer)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		os.Setenv("POSTDROP_JWT_SECRET", "custom-jwt-secret-key-32-chars-long-minimum")
		os.Setenv("POSTDROP_SERVER_HOST", "127.0.0.1")
		os.Setenv("POSTDROP_SERVER_PORT", "9090")
		os.Setenv("POSTDROP_PROVIDER_DOMAINS", "sharklasers.com,grr.la")
		os.Setenv("POSTDROP_PROVIDER_DEFAULT_DOMAIN", "grr.la")
		os.Setenv("POSTDROP_PROVIDER_TIMEOUT", "3s")
		os.Setenv("POSTDROP_MAILBOX_TTL", "2h")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, []string{"sharklasers.com", "grr.la"}, cfg.Provider.Domains)
		assert.Equal(t, "grr.la", cfg.Provider.DefaultDomain)
		assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
		assert.Equal(t, 2*time.Hour, cfg.Mailbox.TTL)
	})

	t.Run("缺少JWT密钥加载失败", func(t *testing.T) {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("JWT密钥过短加载失败", func(t *testing.T) {
		os.Setenv("POSTDROP_JWT_SECRET", "too-short")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("默认域名不在白名单内加载失败", func(t *testing.T) {
		os.Setenv("POSTDROP_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")
		os.Setenv("POSTDROP_PROVIDER_DOMAINS", "sharklasers.com")
		os.Setenv("POSTDROP_PROVIDER_DEFAULT_DOMAIN", "other.com")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestParseDomains(t *testing.T) {
	t.Run("解析逗号分隔的域名", func(t *testing.T) {
		domains := parseDomains("Sharklasers.com, GRR.LA ,pokemail.net")
		assert.Equal(t, []string{"sharklasers.com", "grr.la", "pokemail.net"}, domains)
	})

	t.Run("忽略空白项", func(t *testing.T) {
		domains := parseDomains(" , sharklasers.com , ")
		assert.Equal(t, []string{"sharklasers.com"}, domains)
	})
}
