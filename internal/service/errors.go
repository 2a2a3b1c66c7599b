package service

import (
	"errors"
	"fmt"

	"binfluencer/backend/internal/domain"
)

var (
	// ErrCooperationNotFound 合作记录不存在或不属于调用者（两种情况刻意不区分）
	ErrCooperationNotFound = errors.New("cooperation not found")
	// ErrUpdateFailed 更新影响零行（并发竞争或记录被删除）
	ErrUpdateFailed = errors.New("cooperation update affected no rows")
	// ErrInvalidStatus 请求的状态不是枚举成员
	ErrInvalidStatus = errors.New("invalid cooperation status")
	// ErrProvisioningExhausted 连续 10 次候选地址冲突，开通终止
	ErrProvisioningExhausted = errors.New("mailbox provisioning exhausted all attempts")
	// ErrEmailNotProvisioned 调用者尚未开通商务邮箱
	ErrEmailNotProvisioned = errors.New("business email not provisioned")
	// ErrBioNotVerified 主页 Bio 中未找到商务邮箱
	ErrBioNotVerified = errors.New("business email not found in bio")
	// ErrInvalidTikTokURL 无法从链接中解析 TikTok 用户名
	ErrInvalidTikTokURL = errors.New("invalid tiktok profile url")
	// ErrVerifyRateLimited 抓取频率超限
	ErrVerifyRateLimited = errors.New("bio verification rate limited")
)

// IllegalTransitionError 表示非法的状态转换，携带双方状态便于前端诊断。
type IllegalTransitionError struct {
	From domain.Status
	To   domain.Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

// IsIllegalTransition 判断错误是否为非法状态转换
func IsIllegalTransition(err error) (*IllegalTransitionError, bool) {
	var ite *IllegalTransitionError
	if errors.As(err, &ite) {
		return ite, true
	}
	return nil, false
}
