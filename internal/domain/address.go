package domain

import (
	"regexp"
	"strings"
)

// fallbackLocalPart 姓名清洗后为空时使用的固定本地部分
const fallbackLocalPart = "influencer"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	nonAlnumPattern   = regexp.MustCompile(`[^a-z0-9]`)
)

// EmailLocalPart 由红人姓名派生邮箱本地部分：
// 转小写、去空白、仅保留 [a-z0-9]；结果为空则使用固定兜底值。
func EmailLocalPart(fullName string) string {
	clean := strings.ToLower(fullName)
	clean = whitespacePattern.ReplaceAllString(clean, "")
	clean = nonAlnumPattern.ReplaceAllString(clean, "")
	if clean == "" {
		return fallbackLocalPart
	}
	return clean
}

// SplitName 将姓名拆分为 firstname / lastname，供邮箱服务商建户使用。
// 含空格的姓名按 "姓 名" 拆分；中文姓名第一个字为姓、其余为名；
// 空输入回退为固定占位。
func SplitName(fullName string) (firstname, lastname string) {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return "User", "Influencer"
	}

	if strings.Contains(trimmed, " ") {
		parts := whitespacePattern.Split(trimmed, -1)
		if len(parts) >= 2 {
			return strings.Join(parts[1:], " "), parts[0]
		}
	}

	runes := []rune(trimmed)
	if len(runes) == 1 {
		return "User", string(runes[0])
	}
	return string(runes[1:]), string(runes[0])
}
