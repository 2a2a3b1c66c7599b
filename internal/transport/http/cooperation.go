package httptransport

import (
	"github.com/gin-gonic/gin"

	"binfluencer/backend/internal/domain"
	"binfluencer/backend/internal/middleware"
	"binfluencer/backend/internal/service"
)

// CooperationHandler 合作工作流接口
type CooperationHandler struct {
	cooperations *service.CooperationService
}

// NewCooperationHandler 创建合作工作流处理器
func NewCooperationHandler(cooperations *service.CooperationService) *CooperationHandler {
	return &CooperationHandler{cooperations: cooperations}
}

// CategorizedResponse 合作记录分类视图响应
type CategorizedResponse struct {
	Total        int                            `json:"total"`
	Cooperations domain.CategorizedCooperations `json:"cooperations"`
}

// ListCooperations godoc
// @Summary 获取合作记录分类视图
// @Description 返回当前红人全部合作记录的五分类投影（申请/确认/草稿/视频/结算）
// @Tags Cooperations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=CategorizedResponse}
// @Failure 401 {object} Response
// @Router /v1/cooperations [get]
func (h *CooperationHandler) ListCooperations(c *gin.Context) {
	userID := middleware.UserID(c)

	categorized, total, err := h.cooperations.ListCategorized(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, CategorizedResponse{
		Total:        total,
		Cooperations: categorized,
	})
}

// UpdateStatusRequest 状态转换请求
type UpdateStatusRequest struct {
	CooperationID uint64  `json:"cooperationId" binding:"required"`
	NewStatus     string  `json:"newStatus" binding:"required"`
	DraftLink     *string `json:"draftLink"`
	VideoLink     *string `json:"videoLink"`
	SparkCode     *string `json:"sparkCode"`
	BrandFeedback *string `json:"brandFeedback"`
}

// UpdateStatus godoc
// @Summary 更新合作状态
// @Description 对一条合作记录应用一次状态转换，可同时提交草稿/视频链接等附属字段
// @Tags Cooperations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateStatusRequest true "转换请求"
// @Success 200 {object} Response{data=domain.Cooperation}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /v1/cooperations/status [patch]
func (h *CooperationHandler) UpdateStatus(c *gin.Context) {
	userID := middleware.UserID(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	updated, err := h.cooperations.ApplyTransition(c.Request.Context(), userID, service.TransitionInput{
		CooperationID: req.CooperationID,
		NewStatus:     domain.Status(req.NewStatus),
		DraftLink:     req.DraftLink,
		VideoLink:     req.VideoLink,
		SparkCode:     req.SparkCode,
		BrandFeedback: req.BrandFeedback,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	SuccessWithMsg(c, "状态更新成功", updated)
}
