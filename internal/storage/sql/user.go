package sql

import (
	"database/sql"
	"errors"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

// ========== User Repository ==========

// GetUserBySupabaseID 按外部身份ID获取用户行
func (s *Store) GetUserBySupabaseID(supabaseUserID string) (*domain.User, error) {
	query := s.rebind(`
		SELECT user_id, supabase_user_id, red_id, login_email, shipping_full_name,
		       shipping_country, shipping_state_province, shipping_city,
		       shipping_address_line, shipping_post_zip_code, shipping_telephone,
		       payment_method, payment_account
		FROM t_red_user
		WHERE supabase_user_id = ?
	`)

	var user domain.User
	err := s.db.QueryRow(query, supabaseUserID).Scan(
		&user.UserID,
		&user.SupabaseUserID,
		&user.RedID,
		&user.LoginEmail,
		&user.ShippingFullName,
		&user.ShippingCountry,
		&user.ShippingStateProvince,
		&user.ShippingCity,
		&user.ShippingAddressLine,
		&user.ShippingPostZipCode,
		&user.ShippingTelephone,
		&user.PaymentMethod,
		&user.PaymentAccount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser 插入新用户行。
// supabase_user_id 唯一键冲突映射为 ErrAlreadyExists，调用方据此视为幂等成功。
func (s *Store) CreateUser(user *domain.User) error {
	query := s.rebind(`
		INSERT INTO t_red_user (
			supabase_user_id, red_id, login_email, shipping_full_name,
			shipping_country, shipping_state_province, shipping_city,
			shipping_address_line, shipping_post_zip_code, shipping_telephone,
			payment_method, payment_account
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.Exec(query,
		user.SupabaseUserID,
		user.RedID,
		user.LoginEmail,
		user.ShippingFullName,
		user.ShippingCountry,
		user.ShippingStateProvince,
		user.ShippingCity,
		user.ShippingAddressLine,
		user.ShippingPostZipCode,
		user.ShippingTelephone,
		user.PaymentMethod,
		user.PaymentAccount,
	)
	return s.translateError(err)
}

// UpdateUser 覆盖用户行的档案字段
func (s *Store) UpdateUser(user *domain.User) error {
	query := s.rebind(`
		UPDATE t_red_user
		SET login_email = ?, shipping_full_name = ?, shipping_country = ?,
		    shipping_state_province = ?, shipping_city = ?, shipping_address_line = ?,
		    shipping_post_zip_code = ?, shipping_telephone = ?,
		    payment_method = ?, payment_account = ?
		WHERE supabase_user_id = ?
	`)

	result, err := s.db.Exec(query,
		user.LoginEmail,
		user.ShippingFullName,
		user.ShippingCountry,
		user.ShippingStateProvince,
		user.ShippingCity,
		user.ShippingAddressLine,
		user.ShippingPostZipCode,
		user.ShippingTelephone,
		user.PaymentMethod,
		user.PaymentAccount,
		user.SupabaseUserID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// NextRedID 返回下一个顺序红人编号（max+1）
func (s *Store) NextRedID() (uint64, error) {
	var next uint64
	err := s.db.QueryRow(`SELECT COALESCE(MAX(red_id), 0) + 1 FROM t_red_user`).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}
