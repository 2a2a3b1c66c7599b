package sql

import (
	"database/sql"
	"errors"
	"time"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

// ========== Email Repository ==========

const emailColumns = `id, user_id, supabase_user_id, email, email_type, status,
	       tiktok_username, tiktok_url, tiktok_bio_verified, tiktok_bio_verified_at,
	       created_at, updated_at`

// GetEmailByOwner 按所有者获取邮箱行
func (s *Store) GetEmailByOwner(supabaseUserID string) (*domain.UserEmail, error) {
	query := s.rebind(`
		SELECT ` + emailColumns + `
		FROM t_red_user_email
		WHERE supabase_user_id = ?
	`)
	return s.queryEmail(query, supabaseUserID)
}

// GetEmailByAddress 按邮箱地址获取邮箱行
func (s *Store) GetEmailByAddress(address string) (*domain.UserEmail, error) {
	query := s.rebind(`
		SELECT ` + emailColumns + `
		FROM t_red_user_email
		WHERE email = ?
	`)
	return s.queryEmail(query, address)
}

// CreateEmail 插入新邮箱行。
// email 与 supabase_user_id 均为唯一键，冲突映射为 ErrAlreadyExists
// （first-writer-wins：同一所有者的既有邮箱行不会被覆盖）。
func (s *Store) CreateEmail(email *domain.UserEmail) error {
	now := time.Now().UTC()
	if email.CreatedAt.IsZero() {
		email.CreatedAt = now
	}
	email.UpdatedAt = now

	query := s.rebind(`
		INSERT INTO t_red_user_email (
			user_id, supabase_user_id, email, email_type, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.Exec(query,
		email.UserID,
		email.SupabaseUserID,
		email.Email,
		email.EmailType,
		email.Status,
		email.CreatedAt,
		email.UpdatedAt,
	)
	return s.translateError(err)
}

// MarkEmailBioVerified 记录 Bio 验证通过
func (s *Store) MarkEmailBioVerified(supabaseUserID, tiktokUsername, tiktokURL string, verifiedAt time.Time) error {
	query := s.rebind(`
		UPDATE t_red_user_email
		SET tiktok_username = ?, tiktok_url = ?, tiktok_bio_verified = ?,
		    tiktok_bio_verified_at = ?, updated_at = ?
		WHERE supabase_user_id = ?
	`)

	result, err := s.db.Exec(query,
		tiktokUsername,
		tiktokURL,
		true,
		verifiedAt,
		time.Now().UTC(),
		supabaseUserID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrEmailNotFound
	}
	return nil
}

// queryEmail 扫描单行邮箱记录
func (s *Store) queryEmail(query string, arg interface{}) (*domain.UserEmail, error) {
	var email domain.UserEmail
	var tiktokUsername, tiktokURL sql.NullString
	var verifiedAt sql.NullTime

	err := s.db.QueryRow(query, arg).Scan(
		&email.ID,
		&email.UserID,
		&email.SupabaseUserID,
		&email.Email,
		&email.EmailType,
		&email.Status,
		&tiktokUsername,
		&tiktokURL,
		&email.TikTokBioVerified,
		&verifiedAt,
		&email.CreatedAt,
		&email.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEmailNotFound
		}
		return nil, err
	}

	if tiktokUsername.Valid {
		email.TikTokUsername = tiktokUsername.String
	}
	if tiktokURL.Valid {
		email.TikTokURL = tiktokURL.String
	}
	if verifiedAt.Valid {
		email.TikTokBioVerifiedAt = &verifiedAt.Time
	}

	return &email, nil
}
