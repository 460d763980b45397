package domain

import (
	"regexp"
	"strings"
)

// Code 是作品的唯一主键（规范化后形如 SSIS-001）。
//
// 约束：一旦规范化（大写 + '-' 分隔），比较天然大小写安全；
// 任何来源返回的 Detail.Code 都必须先过 ParseCode。
type Code string

var codeRE = regexp.MustCompile(`^[A-Z]{2,5}-[0-9]{2,5}$`)

// ParseCode 校验并解析规范化后的 CODE 字符串。
// 输入必须已经是大写 + '-' 分隔的形态。
func ParseCode(s string) (Code, bool) {
	s = strings.TrimSpace(s)
	if !codeRE.MatchString(s) {
		return "", false
	}
	return Code(s), true
}
