package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("加载默认配置成功", func(t *testing.T) {
		t.Setenv("BINFLUENCER_SUPABASE_URL", "https://proj.supabase.co")
		t.Setenv("BINFLUENCER_SUPABASE_SERVICE_KEY", "service-key")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "", cfg.Database.Type)
		assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
		assert.Equal(t, "binfluencer.xyz", cfg.Mail.Domain)
		assert.Equal(t, 1024, cfg.Mail.DefaultQuota)
		assert.Equal(t, "http://open.global-mail.cn", cfg.Mail.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Verify.FetchTimeout)
		assert.Equal(t, 10, cfg.Verify.RatePerMin)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		t.Setenv("BINFLUENCER_SUPABASE_URL", "https://proj.supabase.co/")
		t.Setenv("BINFLUENCER_SUPABASE_SERVICE_KEY", "service-key")
		t.Setenv("BINFLUENCER_SERVER_PORT", "9000")
		t.Setenv("BINFLUENCER_MAIL_DOMAIN", "Brand-Mail.COM")
		t.Setenv("BINFLUENCER_CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
		t.Setenv("BINFLUENCER_DATABASE_TYPE", "postgres")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Server.Port)
		// 域名统一小写，URL 去尾部斜杠
		assert.Equal(t, "brand-mail.com", cfg.Mail.Domain)
		assert.Equal(t, "https://proj.supabase.co", cfg.Supabase.URL)
		assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "postgres", cfg.Database.Type)
	})

	t.Run("缺少身份提供方配置失败", func(t *testing.T) {
		t.Setenv("BINFLUENCER_SUPABASE_URL", "")
		t.Setenv("BINFLUENCER_SUPABASE_SERVICE_KEY", "")

		_, err := Load()
		assert.Error(t, err)
	})
}
