package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

func TestStore_Cooperations(t *testing.T) {
	store := NewStore()

	first := store.SeedCooperation(&domain.Cooperation{
		SupabaseUserID: "owner-1",
		BrandName:      "Acme",
		Status:         domain.StatusInvited,
	})
	second := store.SeedCooperation(&domain.Cooperation{
		SupabaseUserID: "owner-1",
		Status:         domain.StatusPendingApplication,
	})

	t.Run("按 id+所有者读取", func(t *testing.T) {
		got, err := store.GetCooperation(first.ID, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme", got.BrandName)

		_, err = store.GetCooperation(first.ID, "owner-2")
		assert.ErrorIs(t, err, storage.ErrCooperationNotFound)
	})

	t.Run("列表按 id 倒序", func(t *testing.T) {
		list, err := store.ListCooperationsByOwner("owner-1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("过滤更新只触碰提交的字段", func(t *testing.T) {
		link := "https://drive.example.com/draft"
		affected, err := store.UpdateCooperation(first.ID, "owner-1", storage.CooperationUpdate{
			Status:    domain.StatusDraftUploaded,
			DraftLink: &link,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), affected)

		got, err := store.GetCooperation(first.ID, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDraftUploaded, got.Status)
		require.NotNil(t, got.DraftLink)
		assert.Equal(t, link, *got.DraftLink)
		assert.Nil(t, got.VideoLink)
	})

	t.Run("所有者不匹配更新零行", func(t *testing.T) {
		affected, err := store.UpdateCooperation(first.ID, "owner-2", storage.CooperationUpdate{
			Status: domain.StatusSettled,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(0), affected)
	})
}

func TestStore_Users(t *testing.T) {
	store := NewStore()

	t.Run("红人编号从 1 顺序分配", func(t *testing.T) {
		redID, err := store.NextRedID()
		require.NoError(t, err)
		assert.Equal(t, uint64(1), redID)

		require.NoError(t, store.CreateUser(&domain.User{SupabaseUserID: "owner-1", RedID: redID}))

		redID, err = store.NextRedID()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), redID)
	})

	t.Run("所有者键唯一", func(t *testing.T) {
		err := store.CreateUser(&domain.User{SupabaseUserID: "owner-1", RedID: 9})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("更新用户行", func(t *testing.T) {
		user, err := store.GetUserBySupabaseID("owner-1")
		require.NoError(t, err)

		user.ShippingCity = "Shanghai"
		require.NoError(t, store.UpdateUser(user))

		got, err := store.GetUserBySupabaseID("owner-1")
		require.NoError(t, err)
		assert.Equal(t, "Shanghai", got.ShippingCity)
	})

	t.Run("不存在的用户", func(t *testing.T) {
		_, err := store.GetUserBySupabaseID("missing")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		err = store.UpdateUser(&domain.User{UserID: 999, SupabaseUserID: "missing"})
		assert.ErrorIs(t, err, storage.ErrUserNotFound)
	})
}

func TestStore_Emails(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.CreateUser(&domain.User{SupabaseUserID: "owner-1", RedID: 1}))

	email := &domain.UserEmail{
		UserID:         1,
		SupabaseUserID: "owner-1",
		Email:          "emilyzhang@binfluencer.xyz",
	}
	require.NoError(t, store.CreateEmail(email))

	t.Run("地址与所有者均唯一", func(t *testing.T) {
		err := store.CreateEmail(&domain.UserEmail{
			SupabaseUserID: "owner-2",
			Email:          "emilyzhang@binfluencer.xyz",
		})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		err = store.CreateEmail(&domain.UserEmail{
			SupabaseUserID: "owner-1",
			Email:          "another@binfluencer.xyz",
		})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("按所有者与按地址读取", func(t *testing.T) {
		byOwner, err := store.GetEmailByOwner("owner-1")
		require.NoError(t, err)
		byAddress, err := store.GetEmailByAddress("emilyzhang@binfluencer.xyz")
		require.NoError(t, err)
		assert.Equal(t, byOwner.ID, byAddress.ID)

		_, err = store.GetEmailByOwner("missing")
		assert.ErrorIs(t, err, storage.ErrEmailNotFound)
		_, err = store.GetEmailByAddress("missing@binfluencer.xyz")
		assert.ErrorIs(t, err, storage.ErrEmailNotFound)
	})

	t.Run("记录 Bio 验证状态", func(t *testing.T) {
		verifiedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		err := store.MarkEmailBioVerified("owner-1", "emily.zhang",
			"https://www.tiktok.com/@emily.zhang", verifiedAt)
		require.NoError(t, err)

		got, err := store.GetEmailByOwner("owner-1")
		require.NoError(t, err)
		assert.True(t, got.TikTokBioVerified)
		assert.Equal(t, "emily.zhang", got.TikTokUsername)
		require.NotNil(t, got.TikTokBioVerifiedAt)
		assert.Equal(t, verifiedAt, *got.TikTokBioVerifiedAt)

		err = store.MarkEmailBioVerified("missing", "x", "y", verifiedAt)
		assert.ErrorIs(t, err, storage.ErrEmailNotFound)
	})
}
