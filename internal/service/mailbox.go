package service

import (
	"context"

	"go.uber.org/zap"

	"binfluencer/backend/internal/mailprovider"
)

// MailDirectory 服务商侧邮箱列表查询
type MailDirectory interface {
	QueryUsers(ctx context.Context, account string, pageNo, pageSize int) (*mailprovider.QueryUsersResult, error)
}

// MailboxPage 邮箱目录的一页
type MailboxPage struct {
	Total    int                     `json:"total"`
	PageNo   int                     `json:"pageNo"`
	PageSize int                     `json:"pageSize"`
	List     []mailprovider.MailUser `json:"list"`
}

// MailboxService 邮箱目录服务（运营侧查看已开通的商务邮箱）
type MailboxService struct {
	directory MailDirectory
	log       *zap.Logger
}

// NewMailboxService 创建邮箱目录服务
func NewMailboxService(directory MailDirectory, log *zap.Logger) *MailboxService {
	return &MailboxService{directory: directory, log: log}
}

// ListMailboxes 分页查询域下邮箱账户，account 非空时按账号前缀过滤
func (s *MailboxService) ListMailboxes(ctx context.Context, account string, pageNo, pageSize int) (*MailboxPage, error) {
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	result, err := s.directory.QueryUsers(ctx, account, pageNo, pageSize)
	if err != nil {
		return nil, err
	}

	list := result.List
	if list == nil {
		list = []mailprovider.MailUser{}
	}
	return &MailboxPage{
		Total:    result.Count,
		PageNo:   pageNo,
		PageSize: pageSize,
		List:     list,
	}, nil
}
