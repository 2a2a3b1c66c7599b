package mailprovider

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"binfluencer/backend/internal/config"
)

// tokenSafetyWindow 本地缓存的令牌有效期。
// 服务商令牌实际两小时过期，本地按 90 分钟计，提前刷新。
const tokenSafetyWindow = 90 * time.Minute

// Client 新网企业邮箱开放平台的签名请求客户端。
// 除进程内的令牌缓存外无状态，可被多个 goroutine 并发使用。
type Client struct {
	baseURL    string
	corpID     string
	corpSecret string
	domain     string
	httpClient *http.Client

	now func() time.Time // 可注入时钟，便于测试令牌过期

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient 创建邮箱服务商客户端
func NewClient(cfg *config.MailConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		corpID:     cfg.CorpID,
		corpSecret: cfg.CorpSecret,
		domain:     cfg.Domain,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// Domain 返回商务邮箱域名
func (c *Client) Domain() string {
	return c.domain
}

// md5Hex 计算 MD5 哈希（小写十六进制）
func md5Hex(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// encryptPassword AES-128-CBC + PKCS5 加密密码。
// Key 取 md5(corpsecret) 十六进制串的前 16 字节，IV 取后 16 字节。
func (c *Client) encryptPassword(plain string) (string, error) {
	md5Secret := md5Hex(c.corpSecret)
	key := []byte(md5Secret[:16])
	iv := []byte(md5Secret[16:])

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	padLen := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append([]byte(plain), bytes.Repeat([]byte{byte(padLen)}, padLen)...)

	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// ensureToken 返回有效的访问令牌，缺失或过期时重新获取。
// 并发刷新至多造成一次多余的令牌请求，无正确性影响。
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, expiry := c.accessToken, c.tokenExpiry
	c.mu.Unlock()

	if token != "" && c.now().Before(expiry) {
		return token, nil
	}
	return c.fetchToken(ctx)
}

// tokenResponse 令牌接口响应。
// data 字段历史上既出现过字符串也出现过对象，逐层探测。
type tokenResponse struct {
	Code        json.Number     `json:"code"`
	Msg         string          `json:"msg"`
	Data        json.RawMessage `json:"data"`
	AccessToken string          `json:"access_token"`
}

// fetchToken 请求新令牌并写入缓存
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)

	// 签名：md5(corpid + "_" + uuid + "_" + ts + "_" + corpsecret)
	sign := md5Hex(fmt.Sprintf("%s_%s_%s_%s", c.corpID, nonce, ts, c.corpSecret))

	params := url.Values{}
	params.Set("corpId", c.corpID)
	params.Set("uuid", nonce)
	params.Set("ts", ts)
	params.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/token?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if result.Code.String() != "0" {
		return "", mapProviderError(result.Code.String(), result.Msg)
	}

	token := extractAccessToken(result)
	if token == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	c.mu.Lock()
	c.accessToken = token
	c.tokenExpiry = c.now().Add(tokenSafetyWindow)
	c.mu.Unlock()

	return token, nil
}

// extractAccessToken 从响应中逐层提取 access_token
func extractAccessToken(result tokenResponse) string {
	if len(result.Data) > 0 {
		var asString string
		if err := json.Unmarshal(result.Data, &asString); err == nil && asString != "" {
			return asString
		}
		var asObject struct {
			AccessToken  string `json:"access_token"`
			AccessToken2 string `json:"accessToken"`
		}
		if err := json.Unmarshal(result.Data, &asObject); err == nil {
			if asObject.AccessToken != "" {
				return asObject.AccessToken
			}
			if asObject.AccessToken2 != "" {
				return asObject.AccessToken2
			}
		}
	}
	return result.AccessToken
}

// apiResponse 业务接口通用响应
type apiResponse struct {
	Code json.Number     `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// postSigned 发送带签名的 POST 请求。
// 签名：md5(json + "_" + corpid + "_" + uuid + "_" + ts + "_" + access_token + "_" + corpsecret)，
// nonce/时间戳/签名经查询参数传递，请求体为 JSON。
func (c *Client) postSigned(ctx context.Context, path string, payload interface{}) (*apiResponse, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	nonce := uuid.NewString()
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	sign := md5Hex(fmt.Sprintf("%s_%s_%s_%s_%s_%s", string(body), c.corpID, nonce, ts, token, c.corpSecret))

	params := url.Values{}
	params.Set("access_token", token)
	params.Set("corpid", c.corpID)
	params.Set("uuid", nonce)
	params.Set("ts", ts)
	params.Set("sign", sign)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path+"?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}
	return &result, nil
}
