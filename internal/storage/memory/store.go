package memory

import (
	"sort"
	"sync"
	"time"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

// Store 内存存储实现（开发模式与单元测试使用）。
// 互斥锁串行化所有写入，因此 check-then-insert 在内存实现下无并发窗口。
type Store struct {
	mu           sync.RWMutex
	cooperations map[uint64]*domain.Cooperation
	users        map[string]*domain.User // key: supabase_user_id
	emails       map[string]*domain.UserEmail
	nextCoopID   uint64
	nextUserID   uint64
	nextEmailID  uint64
}

// NewStore 创建内存存储
func NewStore() *Store {
	return &Store{
		cooperations: make(map[uint64]*domain.Cooperation),
		users:        make(map[string]*domain.User),
		emails:       make(map[string]*domain.UserEmail),
		nextCoopID:   1,
		nextUserID:   1,
		nextEmailID:  1,
	}
}

// SeedCooperation 写入一条合作记录（测试与种子数据使用）
func (s *Store) SeedCooperation(coop *domain.Cooperation) *domain.Cooperation {
	s.mu.Lock()
	defer s.mu.Unlock()

	if coop.ID == 0 {
		coop.ID = s.nextCoopID
		s.nextCoopID++
	} else if coop.ID >= s.nextCoopID {
		s.nextCoopID = coop.ID + 1
	}
	if coop.CreatedAt.IsZero() {
		coop.CreatedAt = time.Now().UTC()
	}
	cloned := *coop
	s.cooperations[coop.ID] = &cloned
	return coop
}

// GetCooperation 按 id+ownerKey 获取合作记录
func (s *Store) GetCooperation(id uint64, ownerKey string) (*domain.Cooperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coop, ok := s.cooperations[id]
	if !ok || coop.SupabaseUserID != ownerKey {
		return nil, storage.ErrCooperationNotFound
	}
	cloned := *coop
	return &cloned, nil
}

// ListCooperationsByOwner 返回调用者的全部合作记录（id 降序）
func (s *Store) ListCooperationsByOwner(ownerKey string) ([]domain.Cooperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Cooperation, 0)
	for _, coop := range s.cooperations {
		if coop.SupabaseUserID == ownerKey {
			out = append(out, *coop)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// UpdateCooperation 按 id+ownerKey 过滤更新，返回受影响行数
func (s *Store) UpdateCooperation(id uint64, ownerKey string, update storage.CooperationUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coop, ok := s.cooperations[id]
	if !ok || coop.SupabaseUserID != ownerKey {
		return 0, nil
	}

	coop.Status = update.Status
	if update.DraftLink != nil {
		coop.DraftLink = update.DraftLink
	}
	if update.VideoLink != nil {
		coop.VideoLink = update.VideoLink
	}
	if update.SparkCode != nil {
		coop.SparkCode = update.SparkCode
	}
	if update.BrandFeedback != nil {
		coop.BrandFeedback = update.BrandFeedback
	}
	coop.UpdatedAt = time.Now().UTC()
	return 1, nil
}

// GetUserBySupabaseID 按外部身份ID获取用户行
func (s *Store) GetUserBySupabaseID(supabaseUserID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[supabaseUserID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cloned := *user
	return &cloned, nil
}

// CreateUser 插入新用户行
func (s *Store) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.SupabaseUserID]; ok {
		return storage.ErrAlreadyExists
	}
	if user.UserID == 0 {
		user.UserID = s.nextUserID
		s.nextUserID++
	}
	cloned := *user
	s.users[user.SupabaseUserID] = &cloned
	return nil
}

// UpdateUser 覆盖用户行的档案字段
func (s *Store) UpdateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.SupabaseUserID]
	if !ok {
		return storage.ErrUserNotFound
	}
	user.UserID = existing.UserID
	cloned := *user
	s.users[user.SupabaseUserID] = &cloned
	return nil
}

// NextRedID 返回下一个顺序红人编号
func (s *Store) NextRedID() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var max uint64
	for _, user := range s.users {
		if user.RedID > max {
			max = user.RedID
		}
	}
	return max + 1, nil
}

// GetEmailByOwner 按所有者获取邮箱行
func (s *Store) GetEmailByOwner(supabaseUserID string) (*domain.UserEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, email := range s.emails {
		if email.SupabaseUserID == supabaseUserID {
			cloned := *email
			return &cloned, nil
		}
	}
	return nil, storage.ErrEmailNotFound
}

// GetEmailByAddress 按邮箱地址获取邮箱行
func (s *Store) GetEmailByAddress(address string) (*domain.UserEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.emails[address]
	if !ok {
		return nil, storage.ErrEmailNotFound
	}
	cloned := *email
	return &cloned, nil
}

// CreateEmail 插入新邮箱行
func (s *Store) CreateEmail(email *domain.UserEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emails[email.Email]; ok {
		return storage.ErrAlreadyExists
	}
	for _, existing := range s.emails {
		if existing.SupabaseUserID == email.SupabaseUserID {
			return storage.ErrAlreadyExists
		}
	}
	if email.ID == 0 {
		email.ID = s.nextEmailID
		s.nextEmailID++
	}
	now := time.Now().UTC()
	if email.CreatedAt.IsZero() {
		email.CreatedAt = now
	}
	email.UpdatedAt = now
	cloned := *email
	s.emails[email.Email] = &cloned
	return nil
}

// MarkEmailBioVerified 记录 Bio 验证通过
func (s *Store) MarkEmailBioVerified(supabaseUserID, tiktokUsername, tiktokURL string, verifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, email := range s.emails {
		if email.SupabaseUserID == supabaseUserID {
			email.TikTokUsername = tiktokUsername
			email.TikTokURL = tiktokURL
			email.TikTokBioVerified = true
			email.TikTokBioVerifiedAt = &verifiedAt
			email.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return storage.ErrEmailNotFound
}

// Health 内存存储恒为健康
func (s *Store) Health() error {
	return nil
}

// Close 关闭存储（内存实现为空操作）
func (s *Store) Close() error {
	return nil
}
