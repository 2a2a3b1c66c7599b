package sql

import (
	"database/sql"
	"errors"
	"time"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/storage"
)

// ========== Cooperation Repository ==========

const cooperationColumns = `id, supabase_user_id, brand_name, product_name, selling_points,
	       fee, commission, status, draft_link, video_link, spark_code, brand_feedback,
	       start_date, end_date, created_at, updated_at`

// GetCooperation 按 id+ownerKey 获取合作记录。
// id 存在但归属他人与完全不存在同样返回 ErrCooperationNotFound。
func (s *Store) GetCooperation(id uint64, ownerKey string) (*domain.Cooperation, error) {
	query := s.rebind(`
		SELECT ` + cooperationColumns + `
		FROM t_red_cooperation
		WHERE id = ? AND supabase_user_id = ?
	`)

	coop, err := scanCooperation(s.db.QueryRow(query, id, ownerKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCooperationNotFound
		}
		return nil, err
	}
	return coop, nil
}

// ListCooperationsByOwner 返回调用者的全部合作记录（id 降序）
func (s *Store) ListCooperationsByOwner(ownerKey string) ([]domain.Cooperation, error) {
	query := s.rebind(`
		SELECT ` + cooperationColumns + `
		FROM t_red_cooperation
		WHERE supabase_user_id = ?
		ORDER BY id DESC
	`)

	rows, err := s.db.Query(query, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cooperations := make([]domain.Cooperation, 0)
	for rows.Next() {
		coop, err := scanCooperation(rows)
		if err != nil {
			return nil, err
		}
		cooperations = append(cooperations, *coop)
	}
	return cooperations, rows.Err()
}

// UpdateCooperation 执行按 id+ownerKey 过滤的单条更新，返回受影响行数。
// 动态拼接字段集：status 始终写入，其余列仅在请求携带时写入。
func (s *Store) UpdateCooperation(id uint64, ownerKey string, update storage.CooperationUpdate) (int64, error) {
	setClauses := []string{"status = ?"}
	args := []interface{}{string(update.Status)}

	if update.DraftLink != nil {
		setClauses = append(setClauses, "draft_link = ?")
		args = append(args, *update.DraftLink)
	}
	if update.VideoLink != nil {
		setClauses = append(setClauses, "video_link = ?")
		args = append(args, *update.VideoLink)
	}
	if update.SparkCode != nil {
		setClauses = append(setClauses, "spark_code = ?")
		args = append(args, *update.SparkCode)
	}
	if update.BrandFeedback != nil {
		setClauses = append(setClauses, "brand_feedback = ?")
		args = append(args, *update.BrandFeedback)
	}

	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, time.Now().UTC())

	query := "UPDATE t_red_cooperation SET " + joinClauses(setClauses) + " WHERE id = ? AND supabase_user_id = ?"
	args = append(args, id, ownerKey)

	result, err := s.db.Exec(s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// joinClauses 拼接 SET 子句
func joinClauses(clauses []string) string {
	out := ""
	for i, clause := range clauses {
		if i > 0 {
			out += ", "
		}
		out += clause
	}
	return out
}

// rowScanner 兼容 *sql.Row 与 *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCooperation 扫描一行合作记录
func scanCooperation(row rowScanner) (*domain.Cooperation, error) {
	var coop domain.Cooperation
	var draftLink, videoLink, sparkCode, brandFeedback sql.NullString
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&coop.ID,
		&coop.SupabaseUserID,
		&coop.BrandName,
		&coop.ProductName,
		&coop.SellingPoints,
		&coop.Fee,
		&coop.Commission,
		&coop.Status,
		&draftLink,
		&videoLink,
		&sparkCode,
		&brandFeedback,
		&startDate,
		&endDate,
		&coop.CreatedAt,
		&coop.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if draftLink.Valid {
		coop.DraftLink = &draftLink.String
	}
	if videoLink.Valid {
		coop.VideoLink = &videoLink.String
	}
	if sparkCode.Valid {
		coop.SparkCode = &sparkCode.String
	}
	if brandFeedback.Valid {
		coop.BrandFeedback = &brandFeedback.String
	}
	if startDate.Valid {
		coop.StartDate = &startDate.Time
	}
	if endDate.Valid {
		coop.EndDate = &endDate.Time
	}

	return &coop, nil
}
