package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"binfluencer/backend/internal/config"
	"binfluencer/backend/internal/domain"
)

var (
	// ErrProfileNotFound 档案不存在
	ErrProfileNotFound = errors.New("profile not found")
)

// Client 访问身份提供方 Profile Store（profiles 表）的 REST 客户端。
// 使用 service role key，绕过行级安全策略。
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient 创建 Profile Store 客户端
func NewClient(cfg *config.SupabaseConfig) *Client {
	return &Client{
		baseURL:    cfg.URL,
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetProfile 按用户ID读取档案
func (c *Client) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/profiles?id=eq.%s&limit=1", c.baseURL, url.QueryEscape(userID))

	var profiles []domain.Profile
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrProfileNotFound
	}
	return &profiles[0], nil
}

// ExistsByBusinessEmail 检查某商务邮箱地址是否已被任一档案占用
func (c *Client) ExistsByBusinessEmail(ctx context.Context, address string) (bool, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/profiles?business_email=eq.%s&select=id&limit=1",
		c.baseURL, url.QueryEscape(address))

	var profiles []struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &profiles); err != nil {
		return false, err
	}
	return len(profiles) > 0, nil
}

// UpdateProfile 按用户ID部分更新档案字段
func (c *Client) UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error {
	endpoint := fmt.Sprintf("%s/rest/v1/profiles?id=eq.%s", c.baseURL, url.QueryEscape(userID))

	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodPatch, endpoint, body, nil)
}

// doJSON 执行带认证头的 JSON 请求
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("profile store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("profile store returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode profile store response: %w", err)
		}
	}
	return nil
}
