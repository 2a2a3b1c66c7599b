package mailprovider

import (
	"errors"
	"fmt"
)

// 服务商错误码
const (
	codeAddressExists    = "40006902" // 邮箱地址已被使用
	codeAddressMalformed = "20002005" // 邮箱地址格式不正确
	codeEncryptFailed    = "20002004" // 密码加密失败
)

var (
	// ErrAddressExists 邮箱地址已被服务商占用（可重试改名）
	ErrAddressExists = errors.New("mail address already in use")
	// ErrAddressMalformed 邮箱地址格式不正确
	ErrAddressMalformed = errors.New("mail address malformed")
	// ErrEncryptFailed 服务商侧密码解密失败
	ErrEncryptFailed = errors.New("mail password encryption rejected")
)

// ProviderError 未映射的服务商错误（携带原始错误码与消息）
type ProviderError struct {
	Code string
	Msg  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider error: %s (code: %s)", e.Msg, e.Code)
}

// mapProviderError 将服务商错误码映射为领域错误
func mapProviderError(code, msg string) error {
	switch code {
	case codeAddressExists:
		return ErrAddressExists
	case codeAddressMalformed:
		return ErrAddressMalformed
	case codeEncryptFailed:
		return ErrEncryptFailed
	}
	return &ProviderError{Code: code, Msg: msg}
}
