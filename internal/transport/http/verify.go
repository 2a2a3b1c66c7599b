package httptransport

import (
	"github.com/gin-gonic/gin"

	"binfluencer/backend/internal/middleware"
	"binfluencer/backend/internal/service"
)

// VerifyHandler TikTok Bio 验证接口
type VerifyHandler struct {
	verify *service.VerifyService
}

// NewVerifyHandler 创建 Bio 验证处理器
func NewVerifyHandler(verify *service.VerifyService) *VerifyHandler {
	return &VerifyHandler{verify: verify}
}

// VerifyBioRequest Bio 验证请求
type VerifyBioRequest struct {
	TikTokURL string `json:"tiktokUrl" binding:"required"`
}

// VerifyBio godoc
// @Summary 验证 TikTok 主页 Bio
// @Description 抓取红人 TikTok 主页，检查简介中是否公示了已开通的商务邮箱
// @Tags Verify
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyBioRequest true "主页链接"
// @Success 200 {object} Response{data=service.VerifyResult}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 412 {object} Response
// @Failure 422 {object} Response
// @Failure 429 {object} Response
// @Router /v1/verify-bio [post]
func (h *VerifyHandler) VerifyBio(c *gin.Context) {
	userID := middleware.UserID(c)

	var req VerifyBioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	result, err := h.verify.VerifyBio(c.Request.Context(), userID, req.TikTokURL)
	if err != nil {
		RespondError(c, err)
		return
	}

	msg := "验证通过"
	if !result.Verified {
		msg = "暂时无法获取主页内容，请稍后重试"
	}
	SuccessWithMsg(c, msg, result)
}
