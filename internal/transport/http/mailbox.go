package httptransport

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"binfluencer/backend/internal/middleware"
	"binfluencer/backend/internal/service"
)

// MailboxHandler 商务邮箱开通与目录接口
type MailboxHandler struct {
	provision *service.ProvisionService
	mailboxes *service.MailboxService
}

// NewMailboxHandler 创建邮箱处理器
func NewMailboxHandler(provision *service.ProvisionService, mailboxes *service.MailboxService) *MailboxHandler {
	return &MailboxHandler{provision: provision, mailboxes: mailboxes}
}

// CreateMailboxRequest 开通商务邮箱请求
type CreateMailboxRequest struct {
	FullName string `json:"fullName" binding:"required"`
}

// CreateMailboxResponse 开通结果
type CreateMailboxResponse struct {
	Email string `json:"email"`
}

// CreateMailbox godoc
// @Summary 开通商务邮箱
// @Description 按红人姓名派生唯一邮箱地址并在服务商处建户；重复调用返回既有地址
// @Tags Mailbox
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateMailboxRequest true "红人姓名"
// @Success 201 {object} Response{data=CreateMailboxResponse}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 409 {object} Response
// @Failure 502 {object} Response
// @Router /v1/mailbox [post]
func (h *MailboxHandler) CreateMailbox(c *gin.Context) {
	userID := middleware.UserID(c)

	var req CreateMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	email, err := h.provision.ProvisionMailbox(c.Request.Context(), userID, req.FullName)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, CreateMailboxResponse{Email: email})
}

// ListMailboxes godoc
// @Summary 查询已开通的邮箱目录
// @Description 分页列出域下已开通的商务邮箱账户，支持按账号过滤
// @Tags Mailbox
// @Produce json
// @Security BearerAuth
// @Param account query string false "账号过滤"
// @Param pageNo query int false "页码，默认 1"
// @Param pageSize query int false "每页条数，默认 20"
// @Success 200 {object} Response{data=service.MailboxPage}
// @Failure 401 {object} Response
// @Failure 502 {object} Response
// @Router /v1/mailbox/list [get]
func (h *MailboxHandler) ListMailboxes(c *gin.Context) {
	pageNo, _ := strconv.Atoi(c.DefaultQuery("pageNo", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	account := c.Query("account")

	page, err := h.mailboxes.ListMailboxes(c.Request.Context(), account, pageNo, pageSize)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, page)
}
