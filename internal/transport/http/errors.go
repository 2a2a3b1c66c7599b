package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"binfluencer/backend/internal/mailprovider"
	"binfluencer/backend/internal/service"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	service.ErrCooperationNotFound:   "合作记录不存在",
	service.ErrUpdateFailed:          "更新失败，请重试",
	service.ErrInvalidStatus:         "不支持的合作状态",
	service.ErrProvisioningExhausted: "邮箱地址分配失败，请联系运营人员",
	service.ErrEmailNotProvisioned:   "请先开通商务邮箱",
	service.ErrBioNotVerified:        "未在主页简介中找到商务邮箱",
	service.ErrInvalidTikTokURL:      "无法识别的 TikTok 主页链接",
	service.ErrVerifyRateLimited:     "验证过于频繁，请稍后再试",
	mailprovider.ErrAddressExists:    "邮箱地址已存在",
	mailprovider.ErrAddressMalformed: "邮箱地址格式无效",
	mailprovider.ErrEncryptFailed:    "邮箱服务商密码加密失败",
}

// 通用错误消息
const (
	MsgInvalidRequest = "请求参数格式错误"
	MsgInvalidID      = "无效的记录编号"
)

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	for sentinel, msg := range errorMessages {
		if errors.Is(err, sentinel) {
			return msg
		}
	}
	return err.Error()
}

// RespondError 将业务错误映射为对应的 HTTP 响应。
// 非法状态转换附带双方状态，便于前端定位问题。
func RespondError(c *gin.Context, err error) {
	if ite, ok := service.IsIllegalTransition(err); ok {
		c.JSON(http.StatusConflict, Response{
			Code: CodeConflict,
			Msg:  "非法的状态转换",
			Data: gin.H{
				"currentStatus":   ite.From,
				"requestedStatus": ite.To,
			},
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrCooperationNotFound):
		NotFound(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTikTokURL):
		BadRequest(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrEmailNotProvisioned):
		Error(c, http.StatusPreconditionFailed, GetErrorMessage(err))
	case errors.Is(err, service.ErrBioNotVerified):
		Error(c, http.StatusUnprocessableEntity, GetErrorMessage(err))
	case errors.Is(err, service.ErrVerifyRateLimited):
		Error(c, http.StatusTooManyRequests, GetErrorMessage(err))
	case errors.Is(err, service.ErrUpdateFailed):
		Conflict(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrProvisioningExhausted):
		Conflict(c, GetErrorMessage(err))
	case errors.Is(err, mailprovider.ErrAddressMalformed),
		errors.Is(err, mailprovider.ErrEncryptFailed):
		Error(c, http.StatusBadGateway, GetErrorMessage(err))
	default:
		var pe *mailprovider.ProviderError
		if errors.As(err, &pe) {
			Error(c, http.StatusBadGateway, "邮箱服务商异常: "+pe.Msg)
			return
		}
		InternalError(c, "服务器内部错误")
	}
}
