package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

// UserProfileUpdate 可由红人自助修改的寄样与收款字段
type UserProfileUpdate struct {
	ShippingFullName      *string `json:"shippingFullName"`
	ShippingCountry       *string `json:"shippingCountry"`
	ShippingStateProvince *string `json:"shippingStateProvince"`
	ShippingCity          *string `json:"shippingCity"`
	ShippingAddressLine   *string `json:"shippingAddressLine"`
	ShippingPostZipCode   *string `json:"shippingPostZipCode"`
	ShippingTelephone     *string `json:"shippingTelephone"`
	PaymentMethod         *string `json:"paymentMethod"`
	PaymentAccount        *string `json:"paymentAccount"`
}

// UserProfileView 返回给前端的用户资料视图
type UserProfileView struct {
	User          *domain.User `json:"user"`
	BusinessEmail string       `json:"businessEmail,omitempty"`
	Initialized   bool         `json:"initialized"`
}

// UserService 红人用户资料服务
type UserService struct {
	store storage.Store
	log   *zap.Logger
}

// NewUserService 创建用户资料服务
func NewUserService(store storage.Store, log *zap.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// GetProfile 读取调用者的用户资料，首次访问时按需建行。
func (s *UserService) GetProfile(ctx context.Context, ownerKey, loginEmail string) (*UserProfileView, error) {
	user, err := s.ensureUser(ownerKey, loginEmail)
	if err != nil {
		return nil, err
	}

	view := &UserProfileView{
		User:        user,
		Initialized: user.IsInitialized(),
	}
	if email, err := s.store.GetEmailByOwner(ownerKey); err == nil {
		view.BusinessEmail = email.Email
	} else if !errors.Is(err, storage.ErrEmailNotFound) {
		return nil, err
	}
	return view, nil
}

// UpdateProfile 部分更新调用者的寄样与收款信息。
// nil 字段保持不变，通过后返回更新后的资料视图。
func (s *UserService) UpdateProfile(ctx context.Context, ownerKey, loginEmail string, update UserProfileUpdate) (*UserProfileView, error) {
	user, err := s.ensureUser(ownerKey, loginEmail)
	if err != nil {
		return nil, err
	}

	applyIf(&user.ShippingFullName, update.ShippingFullName)
	applyIf(&user.ShippingCountry, update.ShippingCountry)
	applyIf(&user.ShippingStateProvince, update.ShippingStateProvince)
	applyIf(&user.ShippingCity, update.ShippingCity)
	applyIf(&user.ShippingAddressLine, update.ShippingAddressLine)
	applyIf(&user.ShippingPostZipCode, update.ShippingPostZipCode)
	applyIf(&user.ShippingTelephone, update.ShippingTelephone)
	applyIf(&user.PaymentMethod, update.PaymentMethod)
	applyIf(&user.PaymentAccount, update.PaymentAccount)

	if err := s.store.UpdateUser(user); err != nil {
		return nil, err
	}

	s.log.Info("user profile updated", zap.String("ownerKey", ownerKey))
	return s.GetProfile(ctx, ownerKey, loginEmail)
}

// ensureUser 按需创建用户行，红人编号顺序分配
func (s *UserService) ensureUser(ownerKey, loginEmail string) (*domain.User, error) {
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
		LoginEmail:     loginEmail,
	}
	if err := s.store.CreateUser(created); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return s.store.GetUserBySupabaseID(ownerKey)
		}
		return nil, err
	}
	return created, nil
}

func applyIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
