package mailprovider

import (
	"context"
	"encoding/json"
	"fmt"
)

// MailSettings 邮箱协议开关与配额
type MailSettings struct {
	Quota          int  `json:"quota"` // MB
	POP            bool `json:"pop"`
	IMAP           bool `json:"imap"`
	SMTP           bool `json:"smtp"`
	Webmail        bool `json:"webmail"`
	MaxRcptNum     int  `json:"maxrcptnum"`
	MaxMessageSize int  `json:"maxmessagesize"`
	MaxAttachSize  int  `json:"maxattachsize"`
}

// AddUserInput 创建邮箱账户所需输入
type AddUserInput struct {
	LoginUserID string // 完整邮箱地址
	Password    string // 明文密码，发送前加密
	Firstname   string
	Lastname    string
	Quota       int // MB，0 使用默认 1024
}

// addUserRequest 创建用户的请求体
type addUserRequest struct {
	LoginUserID string       `json:"loginuserid"`
	Password    string       `json:"password"`
	Firstname   string       `json:"firstname"`
	Lastname    string       `json:"lastname"`
	Mail        MailSettings `json:"mail"`
	Gender      int          `json:"gender"` // 2-未知
	DomainName  string       `json:"domainName,omitempty"`
}

// AddUser 创建邮箱账户。
// 固定开启 pop/imap/smtp/webmail；地址冲突返回 ErrAddressExists。
func (c *Client) AddUser(ctx context.Context, input AddUserInput) error {
	encrypted, err := c.encryptPassword(input.Password)
	if err != nil {
		return fmt.Errorf("failed to encrypt password: %w", err)
	}

	quota := input.Quota
	if quota <= 0 {
		quota = 1024
	}

	req := addUserRequest{
		LoginUserID: input.LoginUserID,
		Password:    encrypted,
		Firstname:   input.Firstname,
		Lastname:    input.Lastname,
		Mail: MailSettings{
			Quota:          quota,
			POP:            true,
			IMAP:           true,
			SMTP:           true,
			Webmail:        true,
			MaxRcptNum:     200,
			MaxMessageSize: 50,
			MaxAttachSize:  50,
		},
		Gender:     2,
		DomainName: c.domain,
	}

	result, err := c.postSigned(ctx, "/api/user/addUser", req)
	if err != nil {
		return err
	}
	if result.Code.String() != "0" {
		return mapProviderError(result.Code.String(), result.Msg)
	}
	return nil
}

// MailUser 服务商返回的邮箱账户
type MailUser struct {
	LoginUserID string        `json:"loginuserid"`
	DisplayName string        `json:"displayName"`
	Position    string        `json:"position"`
	Mobile      string        `json:"mobile"`
	Telephone   string        `json:"telephone"`
	OrgNames    string        `json:"orgNames"`
	Mail        *MailSettings `json:"mail,omitempty"`
}

// QueryUsersResult 分页查询结果
type QueryUsersResult struct {
	Count int        `json:"count"`
	List  []MailUser `json:"list"`
}

// queryUsersRequest 查询用户的请求体
type queryUsersRequest struct {
	PageNo     int               `json:"pageNo"`
	PageSize   int               `json:"pageSize"`
	QueryMap   map[string]string `json:"queryMap"`
	DomainName string            `json:"domainName,omitempty"`
}

// QueryUsers 分页查询域下的邮箱账户，account 非空时按账号过滤
func (c *Client) QueryUsers(ctx context.Context, account string, pageNo, pageSize int) (*QueryUsersResult, error) {
	queryMap := map[string]string{}
	if account != "" {
		queryMap["account"] = account
	}

	req := queryUsersRequest{
		PageNo:     pageNo,
		PageSize:   pageSize,
		QueryMap:   queryMap,
		DomainName: c.domain,
	}

	result, err := c.postSigned(ctx, "/api/user/queryUsers", req)
	if err != nil {
		return nil, err
	}
	if result.Code.String() != "0" {
		return nil, mapProviderError(result.Code.String(), result.Msg)
	}

	var data QueryUsersResult
	if len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode user list: %w", err)
		}
	}
	return &data, nil
}
