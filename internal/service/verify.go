package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"binfluencer/backend/internal/monitoring"
	"binfluencer/backend/internal/storage"
)

// tiktokUsernamePattern 从主页链接中提取用户名
var tiktokUsernamePattern = regexp.MustCompile(`tiktok\.com/@([A-Za-z0-9._]+)`)

// maxBioPageSize 主页抓取读取上限，防止异常响应撑爆内存
const maxBioPageSize = 4 << 20

// BioVerifier 查找红人 TikTok 主页 Bio 中是否公示了商务邮箱。
// 抓取为尽力而为的外部查询：页面结构随时可能变化，拿不到视为未验证。
type BioVerifier interface {
	FetchBio(ctx context.Context, username string) (string, error)
}

// VerifyResult Bio 验证结果
type VerifyResult struct {
	Verified       bool   `json:"verified"`
	Email          string `json:"email"`
	TikTokUsername string `json:"tiktokUsername"`
}

// VerifyService TikTok Bio 验证服务。
// 进程级令牌桶限制对 TikTok 的抓取频率，避免触发对方风控。
type VerifyService struct {
	store    storage.Store
	profiles ProfileStore
	fetcher  BioVerifier
	limiter  *rate.Limiter
	log      *zap.Logger
	now      func() time.Time
	metrics  *monitoring.Metrics
}

// NewVerifyService 创建 Bio 验证服务
func NewVerifyService(store storage.Store, profiles ProfileStore, fetcher BioVerifier,
	ratePerMin int, log *zap.Logger) *VerifyService {
	if ratePerMin <= 0 {
		ratePerMin = 10
	}
	return &VerifyService{
		store:    store,
		profiles: profiles,
		fetcher:  fetcher,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMin)), ratePerMin),
		log:      log,
		now:      time.Now,
	}
}

// WithMetrics 启用业务指标上报
func (s *VerifyService) WithMetrics(m *monitoring.Metrics) *VerifyService {
	s.metrics = m
	return s
}

// VerifyBio 抓取主页并检查 Bio 是否包含调用者的商务邮箱。
//
// 验证通过时在关系库记录验证状态，并尽力同步档案库；两处写入
// 任一失败不影响已经得出的验证结论。
func (s *VerifyService) VerifyBio(ctx context.Context, ownerKey, tiktokURL string) (*VerifyResult, error) {
	email, err := s.store.GetEmailByOwner(ownerKey)
	if err != nil {
		if errors.Is(err, storage.ErrEmailNotFound) {
			return nil, ErrEmailNotProvisioned
		}
		return nil, err
	}

	username, err := ExtractTikTokUsername(tiktokURL)
	if err != nil {
		return nil, err
	}

	if !s.limiter.Allow() {
		return nil, ErrVerifyRateLimited
	}

	bio, err := s.fetcher.FetchBio(ctx, username)
	if err != nil {
		// 抓取失败不算验证失败：页面随时可能改版或风控，给出未验证结论让调用者重试
		s.log.Warn("failed to fetch tiktok profile",
			zap.String("username", username), zap.Error(err))
		if s.metrics != nil {
			s.metrics.BioVerifications.WithLabelValues("fetch_failed").Inc()
		}
		return &VerifyResult{
			Verified:       false,
			Email:          email.Email,
			TikTokUsername: username,
		}, nil
	}

	if !strings.Contains(strings.ToLower(bio), strings.ToLower(email.Email)) {
		if s.metrics != nil {
			s.metrics.BioVerifications.WithLabelValues("not_found").Inc()
		}
		return &VerifyResult{
			Verified:       false,
			Email:          email.Email,
			TikTokUsername: username,
		}, ErrBioNotVerified
	}

	verifiedAt := s.now().UTC()
	profileURL := "https://www.tiktok.com/@" + username

	if err := s.store.MarkEmailBioVerified(ownerKey, username, profileURL, verifiedAt); err != nil {
		s.log.Error("failed to record bio verification",
			zap.String("ownerKey", ownerKey), zap.Error(err))
	}
	if err := s.profiles.UpdateProfile(ctx, ownerKey, map[string]interface{}{
		"tiktok_username":        username,
		"tiktok_url":             profileURL,
		"tiktok_bio_verified":    true,
		"tiktok_bio_verified_at": verifiedAt.Format(time.RFC3339),
	}); err != nil {
		s.log.Error("failed to sync bio verification to profile store",
			zap.String("ownerKey", ownerKey), zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.BioVerifications.WithLabelValues("verified").Inc()
	}
	s.log.Info("tiktok bio verified",
		zap.String("ownerKey", ownerKey),
		zap.String("username", username),
	)

	return &VerifyResult{
		Verified:       true,
		Email:          email.Email,
		TikTokUsername: username,
	}, nil
}

// ExtractTikTokUsername 从主页链接或 @handle 中解析用户名
func ExtractTikTokUsername(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrInvalidTikTokURL
	}

	if m := tiktokUsernamePattern.FindStringSubmatch(trimmed); len(m) == 2 {
		return m[1], nil
	}

	// 允许直接提交 @handle 或裸用户名
	handle := strings.TrimPrefix(trimmed, "@")
	if regexp.MustCompile(`^[A-Za-z0-9._]+$`).MatchString(handle) {
		return handle, nil
	}
	return "", ErrInvalidTikTokURL
}

// HTTPBioFetcher 通过公开主页 HTML 抓取 Bio 文本。
// 返回整页文本供包含性检查，不尝试解析页面结构。
type HTTPBioFetcher struct {
	httpClient *http.Client
}

// NewHTTPBioFetcher 创建主页抓取器
func NewHTTPBioFetcher(timeout time.Duration) *HTTPBioFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPBioFetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchBio 抓取 https://www.tiktok.com/@username 页面文本
func (f *HTTPBioFetcher) FetchBio(ctx context.Context, username string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		"https://www.tiktok.com/@"+username, nil)
	if err != nil {
		return "", err
	}
	// 无 UA 会被 TikTok 直接拒绝
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tiktok returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBioPageSize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
