package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/mailprovider"
	"binfluencer/backend/internal/monitoring"
	"binfluencer/backend/internal/storage"
)

// maxProvisionAttempts 候选地址探测上限
const maxProvisionAttempts = 10

// ProfileStore 开通流程依赖的档案库操作
type ProfileStore interface {
	ExistsByBusinessEmail(ctx context.Context, address string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]interface{}) error
}

// MailProvider 开通流程依赖的邮箱服务商操作
type MailProvider interface {
	Domain() string
	AddUser(ctx context.Context, input mailprovider.AddUserInput) error
}

// ProvisionService 商务邮箱开通 Saga。
// 地址唯一性跨档案库、关系库与服务商三方校验；冲突时按确定性
// 改名方案有界重试；服务商成功后再落库，档案库同步尽力而为。
type ProvisionService struct {
	store    storage.Store
	profiles ProfileStore
	mail     MailProvider
	log      *zap.Logger

	defaultPassword string
	defaultQuota    int
	now             func() time.Time
	metrics         *monitoring.Metrics
}

// NewProvisionService 创建邮箱开通服务
func NewProvisionService(store storage.Store, profiles ProfileStore, mail MailProvider,
	defaultPassword string, defaultQuota int, log *zap.Logger) *ProvisionService {
	return &ProvisionService{
		store:           store,
		profiles:        profiles,
		mail:            mail,
		log:             log,
		defaultPassword: defaultPassword,
		defaultQuota:    defaultQuota,
		now:             time.Now,
	}
}

// WithMetrics 启用业务指标上报
func (s *ProvisionService) WithMetrics(m *monitoring.Metrics) *ProvisionService {
	s.metrics = m
	return s
}

// ProvisionMailbox 为 (所有者, 姓名) 开通唯一的商务邮箱并返回最终地址。
//
// 幂等：所有者已有邮箱行时直接返回既有地址，不再触达服务商。
// 探测序列：base, base1, base2, …（后缀为 1 起的尝试计数），上限 10 次。
// 服务商报"地址已存在"等同本地冲突继续改名；其余服务商错误立即终止。
func (s *ProvisionService) ProvisionMailbox(ctx context.Context, ownerKey, fullName string) (string, error) {
	if existing, err := s.store.GetEmailByOwner(ownerKey); err == nil {
		return existing.Email, nil
	} else if !errors.Is(err, storage.ErrEmailNotFound) {
		return "", err
	}

	base := domain.EmailLocalPart(fullName)
	local := base

	var finalAddress string
	for attempt := 1; attempt <= maxProvisionAttempts; attempt++ {
		address := local + "@" + s.mail.Domain()

		taken, err := s.addressTaken(ctx, address)
		if err != nil {
			return "", err
		}
		if taken {
			if s.metrics != nil {
				s.metrics.ProvisionCollisions.Inc()
			}
			local = base + strconv.Itoa(attempt)
			continue
		}

		err = s.mail.AddUser(ctx, mailprovider.AddUserInput{
			LoginUserID: address,
			Password:    s.defaultPassword,
			Firstname:   firstnameOf(fullName),
			Lastname:    lastnameOf(fullName),
			Quota:       s.defaultQuota,
		})
		if err != nil {
			if errors.Is(err, mailprovider.ErrAddressExists) {
				// 服务商侧重名，与本地冲突同等对待
				s.log.Info("provider reports address taken, renaming",
					zap.String("address", address))
				if s.metrics != nil {
					s.metrics.ProvisionCollisions.Inc()
					s.metrics.ProviderCallsTotal.WithLabelValues("addUser", "duplicate").Inc()
				}
				local = base + strconv.Itoa(attempt)
				continue
			}
			if s.metrics != nil {
				s.metrics.ProviderCallsTotal.WithLabelValues("addUser", "error").Inc()
			}
			return "", fmt.Errorf("mail provider rejected mailbox creation: %w", err)
		}
		if s.metrics != nil {
			s.metrics.ProviderCallsTotal.WithLabelValues("addUser", "ok").Inc()
		}

		finalAddress = address
		break
	}

	if finalAddress == "" {
		if s.metrics != nil {
			s.metrics.ProvisionExhaustions.Inc()
		}
		s.log.Warn("mailbox provisioning exhausted",
			zap.String("ownerKey", ownerKey),
			zap.String("base", base),
		)
		return "", ErrProvisioningExhausted
	}

	address, err := s.persistAllocation(ctx, ownerKey, finalAddress)
	if err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.MailboxesProvisioned.Inc()
	}
	s.log.Info("business email provisioned",
		zap.String("ownerKey", ownerKey),
		zap.String("email", address),
	)
	return address, nil
}

// addressTaken 依次检查档案库与关系库中地址是否已被占用
func (s *ProvisionService) addressTaken(ctx context.Context, address string) (bool, error) {
	exists, err := s.profiles.ExistsByBusinessEmail(ctx, address)
	if err != nil {
		return false, fmt.Errorf("profile store lookup failed: %w", err)
	}
	if exists {
		return true, nil
	}

	if _, err := s.store.GetEmailByAddress(address); err == nil {
		return true, nil
	} else if !errors.Is(err, storage.ErrEmailNotFound) {
		return false, err
	}
	return false, nil
}

// persistAllocation 服务商建户成功后的落库流程：
// 确保用户行存在 → 确保邮箱行存在（先写者胜） → 尽力同步档案库。
// 邮箱已存在（服务商建户成功而本店竞争失败）时返回既有地址。
func (s *ProvisionService) persistAllocation(ctx context.Context, ownerKey, address string) (string, error) {
	user, err := s.ensureUser(ownerKey)
	if err != nil {
		return "", err
	}

	email := &domain.UserEmail{
		UserID:         user.UserID,
		SupabaseUserID: ownerKey,
		Email:          address,
		EmailType:      1,
		Status:         1,
	}
	if err := s.store.CreateEmail(email); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			existing, readErr := s.store.GetEmailByOwner(ownerKey)
			if readErr != nil {
				return "", readErr
			}
			return existing.Email, nil
		}
		return "", err
	}

	// 档案库同步失败只记日志：邮箱本体是权威状态，元数据可由重跑修复
	if err := s.profiles.UpdateProfile(ctx, ownerKey, map[string]interface{}{
		"business_email":            address,
		"business_email_created_at": s.now().UTC().Format(time.RFC3339),
	}); err != nil {
		s.log.Error("failed to sync business email to profile store",
			zap.String("ownerKey", ownerKey),
			zap.String("email", address),
			zap.Error(err),
		)
	}

	return address, nil
}

// ensureUser 确保所有者在关系库中有用户行，没有则创建（红人编号顺序分配）。
// 唯一键冲突视为"已存在"并重读，收紧 check-then-insert 的并发窗口。
func (s *ProvisionService) ensureUser(ownerKey string) (*domain.User, error) {
	user, err := s.store.GetUserBySupabaseID(ownerKey)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	redID, err := s.store.NextRedID()
	if err != nil {
		return nil, err
	}

	created := &domain.User{
		SupabaseUserID: ownerKey,
		RedID:          redID,
	}
	if err := s.store.CreateUser(created); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return s.store.GetUserBySupabaseID(ownerKey)
		}
		return nil, err
	}
	return created, nil
}

// firstnameOf / lastnameOf 供服务商建户使用的姓名拆分
func firstnameOf(fullName string) string {
	firstname, _ := domain.SplitName(fullName)
	return firstname
}

func lastnameOf(fullName string) string {
	_, lastname := domain.SplitName(fullName)
	return lastname
}
