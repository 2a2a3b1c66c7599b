package httptransport

import (
	"github.com/gin-gonic/gin"

	"binfluencer/backend/internal/middleware"
	"binfluencer/backend/internal/service"
)

// UserHandler 红人资料接口
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler 创建用户资料处理器
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetProfile godoc
// @Summary 获取红人资料
// @Description 返回当前红人的寄样/收款信息、商务邮箱与资料完整度
// @Tags User
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.UserProfileView}
// @Failure 401 {object} Response
// @Router /v1/user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	view, err := h.users.GetProfile(c.Request.Context(), middleware.UserID(c), middleware.UserEmail(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, view)
}

// UpdateProfile godoc
// @Summary 更新红人资料
// @Description 部分更新寄样与收款信息，未提交的字段保持不变
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UserProfileUpdate true "资料字段"
// @Success 200 {object} Response{data=service.UserProfileView}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /v1/user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UserProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	view, err := h.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), middleware.UserEmail(c), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessWithMsg(c, "资料更新成功", view)
}
