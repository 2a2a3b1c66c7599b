package domain

import "time"

// Profile 表示身份提供方 Profile Store 中的用户档案。
// 核心流程只读写其中与商务邮箱、Bio 验证相关的字段。
type Profile struct {
	ID                     string     `json:"id"`
	Email                  string     `json:"email"`
	FullName               string     `json:"full_name"`
	BusinessEmail          string     `json:"business_email"`
	BusinessEmailCreatedAt *time.Time `json:"business_email_created_at,omitempty"`
	TikTokUsername         string     `json:"tiktok_username"`
	TikTokURL              string     `json:"tiktok_url"`
	TikTokBioVerified      bool       `json:"tiktok_bio_verified"`
	TikTokBioVerifiedAt    *time.Time `json:"tiktok_bio_verified_at,omitempty"`
}
