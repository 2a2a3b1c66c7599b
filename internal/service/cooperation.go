package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/monitoring"
	"binfluencer/backend/internal/storage"
)

// TransitionInput 一次状态转换请求。
// 指针字段为 nil 表示前端未提交该字段。
type TransitionInput struct {
	CooperationID uint64
	NewStatus     domain.Status
	DraftLink     *string
	VideoLink     *string
	SparkCode     *string
	BrandFeedback *string
}

// CooperationService 合作工作流服务：状态转换与分类视图。
type CooperationService struct {
	store   storage.Store
	log     *zap.Logger
	metrics *monitoring.Metrics
}

// NewCooperationService 创建合作工作流服务
func NewCooperationService(store storage.Store, log *zap.Logger) *CooperationService {
	return &CooperationService{store: store, log: log}
}

// WithMetrics 启用业务指标上报
func (s *CooperationService) WithMetrics(m *monitoring.Metrics) *CooperationService {
	s.metrics = m
	return s
}

// ApplyTransition 校验并应用一次状态转换。
//
// 流程：按 id+所有者读取 → 校验转换合法性 → 组装待写字段集 →
// 按 id+所有者过滤更新 → 重新读取返回。
// 记录不存在与归属他人返回同一错误，避免泄露记录是否存在。
func (s *CooperationService) ApplyTransition(ctx context.Context, ownerKey string, input TransitionInput) (*domain.Cooperation, error) {
	if !input.NewStatus.IsValid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.store.GetCooperation(input.CooperationID, ownerKey)
	if err != nil {
		if errors.Is(err, storage.ErrCooperationNotFound) {
			return nil, ErrCooperationNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(current.Status, input.NewStatus) {
		if s.metrics != nil {
			s.metrics.IllegalTransitions.Inc()
		}
		return nil, &IllegalTransitionError{From: current.Status, To: input.NewStatus}
	}

	update := storage.CooperationUpdate{Status: input.NewStatus}
	if input.NewStatus == domain.StatusDraftUploaded && input.DraftLink != nil {
		update.DraftLink = input.DraftLink
	}
	if input.NewStatus == domain.StatusVideoUploaded || input.NewStatus == domain.StatusVideoApproved {
		if input.VideoLink != nil {
			update.VideoLink = input.VideoLink
		}
		if input.SparkCode != nil {
			update.SparkCode = input.SparkCode
		}
	}
	if input.BrandFeedback != nil {
		update.BrandFeedback = input.BrandFeedback
	}

	affected, err := s.store.UpdateCooperation(input.CooperationID, ownerKey, update)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// 读取后到写入前记录被删或易主，按临时性失败处理，调用方可整体重试
		return nil, ErrUpdateFailed
	}

	updated, err := s.store.GetCooperation(input.CooperationID, ownerKey)
	if err != nil {
		if errors.Is(err, storage.ErrCooperationNotFound) {
			return nil, ErrUpdateFailed
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(current.Status), string(input.NewStatus)).Inc()
	}
	s.log.Info("cooperation status updated",
		zap.Uint64("cooperationId", input.CooperationID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(input.NewStatus)),
	)

	return updated, nil
}

// ListCategorized 返回调用者全部合作记录的五分类投影及总数。
// 记录按 id 倒序，分类内保持该顺序。
func (s *CooperationService) ListCategorized(ctx context.Context, ownerKey string) (domain.CategorizedCooperations, int, error) {
	cooperations, err := s.store.ListCooperationsByOwner(ownerKey)
	if err != nil {
		return domain.CategorizedCooperations{}, 0, err
	}
	return domain.Categorize(cooperations), len(cooperations), nil
}
