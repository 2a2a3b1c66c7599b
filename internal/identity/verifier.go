package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"binfluencer/backend/internal/config"
)

var (
	// ErrInvalidToken 令牌缺失、过期或校验失败
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity 表示身份提供方确认的调用者身份。
// ID 即所有权列使用的 owner key。
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier 校验 Bearer 令牌并返回调用者身份
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// NewVerifier 根据配置选择校验方式：
// 配置了项目 JWT 密钥时在本地校验（免一次网络往返），否则调用身份提供方接口。
func NewVerifier(cfg *config.SupabaseConfig) Verifier {
	if cfg.JWTSecret != "" {
		return NewJWTVerifier(cfg.JWTSecret)
	}
	return NewRemoteVerifier(cfg.URL, cfg.ServiceKey)
}

// RemoteVerifier 通过身份提供方的 user 接口远程校验令牌
type RemoteVerifier struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewRemoteVerifier 创建远程校验器
func NewRemoteVerifier(baseURL, serviceKey string) *RemoteVerifier {
	return &RemoteVerifier{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify 调用 /auth/v1/user 校验令牌
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.serviceKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if identity.ID == "" {
		return nil, ErrInvalidToken
	}
	return &identity, nil
}

// JWTVerifier 使用项目 JWT 密钥在本地校验令牌
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier 创建本地校验器
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// supabaseClaims 身份提供方签发令牌的声明子集
type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify 校验 HS256 签名与有效期，返回 sub/email
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &supabaseClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}
