package storage

import (
	"errors"
	"time"

	"binfluencer/backend/internal/domain"
)

var (
	// ErrCooperationNotFound 合作记录不存在或不属于调用者
	ErrCooperationNotFound = errors.New("cooperation not found")
	// ErrUserNotFound 用户行不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailNotFound 邮箱行不存在
	ErrEmailNotFound = errors.New("email record not found")
	// ErrAlreadyExists 唯一键冲突（插入时发现已存在）
	ErrAlreadyExists = errors.New("record already exists")
)

// CooperationUpdate 描述一次状态更新要持久化的字段集。
// 指针为 nil 表示不触碰对应列，Status 始终写入。
type CooperationUpdate struct {
	Status        domain.Status
	DraftLink     *string
	VideoLink     *string
	SparkCode     *string
	BrandFeedback *string
}

// CooperationRepository 定义合作记录数据存取操作。
// 所有读写都以 (id, ownerKey) 或 ownerKey 过滤，不存在与无权访问不可区分。
type CooperationRepository interface {
	GetCooperation(id uint64, ownerKey string) (*domain.Cooperation, error)
	ListCooperationsByOwner(ownerKey string) ([]domain.Cooperation, error)
	// UpdateCooperation 执行按 id+ownerKey 过滤的单条更新，返回受影响行数。
	UpdateCooperation(id uint64, ownerKey string, update CooperationUpdate) (int64, error)
}

// UserRepository 定义红人用户行数据存取操作。
type UserRepository interface {
	GetUserBySupabaseID(supabaseUserID string) (*domain.User, error)
	// CreateUser 插入新用户行；supabase_user_id 唯一键冲突返回 ErrAlreadyExists。
	CreateUser(user *domain.User) error
	UpdateUser(user *domain.User) error
	// NextRedID 返回下一个顺序红人编号（max+1）。
	NextRedID() (uint64, error)
}

// EmailRepository 定义商务邮箱行数据存取操作。
type EmailRepository interface {
	GetEmailByOwner(supabaseUserID string) (*domain.UserEmail, error)
	GetEmailByAddress(address string) (*domain.UserEmail, error)
	// CreateEmail 插入新邮箱行；地址或所有者唯一键冲突返回 ErrAlreadyExists。
	CreateEmail(email *domain.UserEmail) error
	// MarkEmailBioVerified 记录 Bio 验证通过；行不存在返回 ErrEmailNotFound。
	MarkEmailBioVerified(supabaseUserID, tiktokUsername, tiktokURL string, verifiedAt time.Time) error
}

// Store 聚合核心流程依赖的全部存储能力。
type Store interface {
	CooperationRepository
	UserRepository
	EmailRepository

	Health() error
	Close() error
}
