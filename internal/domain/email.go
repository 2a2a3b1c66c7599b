package domain

import "time"

// UserEmail 表示为红人开通的商务邮箱行。
// Email 与 SupabaseUserID 均带唯一索引：插入时的唯一键冲突即视为
// "已存在"，用于收紧 check-then-insert 的并发窗口。
type UserEmail struct {
	ID                  uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID              uint64     `json:"userId" gorm:"column:user_id;index;not null"`
	SupabaseUserID      string     `json:"supabaseUserId" gorm:"type:varchar(36);uniqueIndex;not null"`
	Email               string     `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	EmailType           int        `json:"emailType" gorm:"default:1"`
	Status              int        `json:"status" gorm:"default:1"`
	TikTokUsername      string     `json:"tiktokUsername,omitempty" gorm:"column:tiktok_username;type:varchar(100)"`
	TikTokURL           string     `json:"tiktokUrl,omitempty" gorm:"column:tiktok_url;type:varchar(512)"`
	TikTokBioVerified   bool       `json:"tiktokBioVerified" gorm:"column:tiktok_bio_verified;default:false"`
	TikTokBioVerifiedAt *time.Time `json:"tiktokBioVerifiedAt,omitempty" gorm:"column:tiktok_bio_verified_at"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TableName 与历史库表名保持一致
func (UserEmail) TableName() string {
	return "t_red_user_email"
}
