package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"binfluencer/backend/internal/mailprovider"
	"binfluencer/backend/internal/storage"
	"binfluencer/backend/internal/storage/memory"
)

// fakeProfileStore 档案库桩：按地址集合回答占用检查，记录档案更新
type fakeProfileStore struct {
	taken      map[string]bool
	updates    []map[string]interface{}
	existsErr  error
	updateErr  error
	existCalls []string
}

func newFakeProfileStore(taken ...string) *fakeProfileStore {
	m := make(map[string]bool, len(taken))
	for _, address := range taken {
		m[address] = true
	}
	return &fakeProfileStore{taken: m}
}

func (f *fakeProfileStore) ExistsByBusinessEmail(_ context.Context, address string) (bool, error) {
	f.existCalls = append(f.existCalls, address)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.taken[address], nil
}

func (f *fakeProfileStore) UpdateProfile(_ context.Context, _ string, fields map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fields)
	return nil
}

// fakeMailProvider 服务商桩：前 rejectFirst 次建户报重名，可注入致命错误
type fakeMailProvider struct {
	domain      string
	rejectFirst int
	fatalErr    error
	addCalls    []string
}

func (f *fakeMailProvider) Domain() string { return f.domain }

func (f *fakeMailProvider) AddUser(_ context.Context, input mailprovider.AddUserInput) error {
	f.addCalls = append(f.addCalls, input.LoginUserID)
	if f.fatalErr != nil {
		return f.fatalErr
	}
	if len(f.addCalls) <= f.rejectFirst {
		return mailprovider.ErrAddressExists
	}
	return nil
}

func newProvisionService(store storage.Store, profiles ProfileStore, mail MailProvider) *ProvisionService {
	return NewProvisionService(store, profiles, mail, "InitPass0!", 1024, zap.NewNop())
}

func TestProvisionService_Success(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	address, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)
	assert.Equal(t, "emilyzhang@binfluencer.xyz", address)

	// 服务商恰好被调用一次
	assert.Equal(t, []string{"emilyzhang@binfluencer.xyz"}, mail.addCalls)

	// 用户行与邮箱行均已创建
	user, err := store.GetUserBySupabaseID("owner-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.RedID)

	email, err := store.GetEmailByOwner("owner-1")
	require.NoError(t, err)
	assert.Equal(t, address, email.Email)

	// 档案库收到最终地址
	require.Len(t, profiles.updates, 1)
	assert.Equal(t, address, profiles.updates[0]["business_email"])
}

func TestProvisionService_LocalCollisionRenames(t *testing.T) {
	store := memory.NewStore()
	// 基础地址在档案库中已被占用，第一候选应跳过服务商直接改名
	profiles := newFakeProfileStore("emilyzhang@binfluencer.xyz")
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	address, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)
	assert.Equal(t, "emilyzhang1@binfluencer.xyz", address)
	assert.Equal(t, []string{"emilyzhang1@binfluencer.xyz"}, mail.addCalls)
}

func TestProvisionService_ProviderCollisionRenames(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	// 服务商连续三次报重名，第四次建户成功
	mail := &fakeMailProvider{domain: "binfluencer.xyz", rejectFirst: 3}
	service := newProvisionService(store, profiles, mail)

	address, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)

	// 第三次改名后的候选（第 4 个探测）胜出
	assert.Equal(t, "emilyzhang3@binfluencer.xyz", address)
	assert.Equal(t, []string{
		"emilyzhang@binfluencer.xyz",
		"emilyzhang1@binfluencer.xyz",
		"emilyzhang2@binfluencer.xyz",
		"emilyzhang3@binfluencer.xyz",
	}, mail.addCalls)

	email, err := store.GetEmailByOwner("owner-1")
	require.NoError(t, err)
	assert.Equal(t, address, email.Email)
}

func TestProvisionService_Idempotent(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	first, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)

	// 第二次调用短路返回既有地址，不再触达服务商
	second, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, mail.addCalls, 1)
}

func TestProvisionService_FatalProviderError(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	mail := &fakeMailProvider{
		domain:   "binfluencer.xyz",
		fatalErr: mailprovider.ErrAddressMalformed,
	}
	service := newProvisionService(store, profiles, mail)

	_, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.Error(t, err)
	assert.ErrorIs(t, err, mailprovider.ErrAddressMalformed)

	// 致命错误立即终止，不重试、不落库
	assert.Len(t, mail.addCalls, 1)
	_, err = store.GetEmailByOwner("owner-1")
	assert.ErrorIs(t, err, storage.ErrEmailNotFound)
	_, err = store.GetUserBySupabaseID("owner-1")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestProvisionService_Exhausted(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	// 10 个候选全部重名
	mail := &fakeMailProvider{domain: "binfluencer.xyz", rejectFirst: 10}
	service := newProvisionService(store, profiles, mail)

	_, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	assert.ErrorIs(t, err, ErrProvisioningExhausted)

	assert.Len(t, mail.addCalls, 10)
	// 穷尽后零行落库
	_, err = store.GetEmailByOwner("owner-1")
	assert.ErrorIs(t, err, storage.ErrEmailNotFound)
	_, err = store.GetUserBySupabaseID("owner-1")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestProvisionService_ProfileSyncFailureIsBestEffort(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	profiles.updateErr = errors.New("profile store down")
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	// 档案库同步失败不回滚已建邮箱与关系库行
	address, err := service.ProvisionMailbox(context.Background(), "owner-1", "Emily Zhang")
	require.NoError(t, err)

	email, err := store.GetEmailByOwner("owner-1")
	require.NoError(t, err)
	assert.Equal(t, address, email.Email)
}

func TestProvisionService_FallbackLocalPart(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	// 姓名清洗后为空时使用固定兜底本地部分
	address, err := service.ProvisionMailbox(context.Background(), "owner-1", "!!! ???")
	require.NoError(t, err)
	assert.Equal(t, "influencer@binfluencer.xyz", address)
}

func TestProvisionService_SequentialRedIDs(t *testing.T) {
	store := memory.NewStore()
	profiles := newFakeProfileStore()
	mail := &fakeMailProvider{domain: "binfluencer.xyz"}
	service := newProvisionService(store, profiles, mail)

	_, err := service.ProvisionMailbox(context.Background(), "owner-1", "Alice Wang")
	require.NoError(t, err)
	_, err = service.ProvisionMailbox(context.Background(), "owner-2", "Bob Li")
	require.NoError(t, err)

	first, err := store.GetUserBySupabaseID("owner-1")
	require.NoError(t, err)
	second, err := store.GetUserBySupabaseID("owner-2")
	require.NoError(t, err)
	assert.Equal(t, first.RedID+1, second.RedID)
}
