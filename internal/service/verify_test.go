package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage/memory"
)

// fakeBioFetcher 固定返回预置的主页文本
type fakeBioFetcher struct {
	bio string
	err error
}

func (f *fakeBioFetcher) FetchBio(_ context.Context, _ string) (string, error) {
	return f.bio, f.err
}

func seedProvisionedOwner(t *testing.T, store *memory.Store, ownerKey, address string) {
	t.Helper()
	user := &domain.User{SupabaseUserID: ownerKey, RedID: 1}
	require.NoError(t, store.CreateUser(user))
	require.NoError(t, store.CreateEmail(&domain.UserEmail{
		UserID:         user.UserID,
		SupabaseUserID: ownerKey,
		Email:          address,
	}))
}

func TestVerifyService_VerifyBio(t *testing.T) {
	store := memory.NewStore()
	seedProvisionedOwner(t, store, "owner-1", "emilyzhang@binfluencer.xyz")
	profiles := newFakeProfileStore()
	fetcher := &fakeBioFetcher{bio: `{"desc":"Collabs: EmilyZhang@Binfluencer.xyz"}`}
	service := NewVerifyService(store, profiles, fetcher, 10, zap.NewNop())

	// 大小写不敏感匹配
	result, err := service.VerifyBio(context.Background(), "owner-1", "https://www.tiktok.com/@emily.zhang")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "emily.zhang", result.TikTokUsername)

	email, err := store.GetEmailByOwner("owner-1")
	require.NoError(t, err)
	assert.True(t, email.TikTokBioVerified)
	assert.Equal(t, "emily.zhang", email.TikTokUsername)
	require.NotNil(t, email.TikTokBioVerifiedAt)

	require.Len(t, profiles.updates, 1)
	assert.Equal(t, true, profiles.updates[0]["tiktok_bio_verified"])
}

func TestVerifyService_VerifyBio_NotFound(t *testing.T) {
	store := memory.NewStore()
	seedProvisionedOwner(t, store, "owner-1", "emilyzhang@binfluencer.xyz")
	profiles := newFakeProfileStore()
	fetcher := &fakeBioFetcher{bio: "no email here"}
	service := NewVerifyService(store, profiles, fetcher, 10, zap.NewNop())

	result, err := service.VerifyBio(context.Background(), "owner-1", "https://www.tiktok.com/@emily.zhang")
	assert.ErrorIs(t, err, ErrBioNotVerified)
	require.NotNil(t, result)
	assert.False(t, result.Verified)

	// 未通过验证不写任何存储
	email, readErr := store.GetEmailByOwner("owner-1")
	require.NoError(t, readErr)
	assert.False(t, email.TikTokBioVerified)
	assert.Empty(t, profiles.updates)
}

func TestVerifyService_VerifyBio_FetchFailure(t *testing.T) {
	store := memory.NewStore()
	seedProvisionedOwner(t, store, "owner-1", "emilyzhang@binfluencer.xyz")
	profiles := newFakeProfileStore()
	fetcher := &fakeBioFetcher{err: errors.New("tiktok returned status 403")}
	service := NewVerifyService(store, profiles, fetcher, 10, zap.NewNop())

	// 抓取失败给出未验证结论而非错误
	result, err := service.VerifyBio(context.Background(), "owner-1", "https://www.tiktok.com/@emily.zhang")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "emilyzhang@binfluencer.xyz", result.Email)

	email, readErr := store.GetEmailByOwner("owner-1")
	require.NoError(t, readErr)
	assert.False(t, email.TikTokBioVerified)
	assert.Empty(t, profiles.updates)
}

func TestVerifyService_VerifyBio_NotProvisioned(t *testing.T) {
	store := memory.NewStore()
	service := NewVerifyService(store, newFakeProfileStore(), &fakeBioFetcher{}, 10, zap.NewNop())

	_, err := service.VerifyBio(context.Background(), "owner-1", "https://www.tiktok.com/@x")
	assert.ErrorIs(t, err, ErrEmailNotProvisioned)
}

func TestExtractTikTokUsername(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"标准主页链接", "https://www.tiktok.com/@emily.zhang", "emily.zhang", false},
		{"带查询参数的链接", "https://tiktok.com/@user_01?lang=en", "user_01", false},
		{"裸 handle", "@emily.zhang", "emily.zhang", false},
		{"纯用户名", "emilyzhang", "emilyzhang", false},
		{"空输入", "", "", true},
		{"无法解析的链接", "https://example.com/profile", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractTikTokUsername(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTikTokURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
