package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDisabled 表示来源因缺少凭证配置而整体停用。
// 实现必须在发起任何网络请求之前返回它。
var ErrDisabled = errors.New("来源未启用（缺少凭证配置）")

// NotFoundError 表示“查过了，但确认没有匹配条目”。
// 这是可恢复的结果：编排层据此继续降级到下一个来源。
type NotFoundError struct {
	Source string // 来源 name（小写）
	Query  string // CODE 或查询串
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("%s 未找到：%s", e.Source, e.Query)
}

// IsNotFound 判断错误链中是否存在 NotFoundError。
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
// 对编排层来说它与 NotFound 同样触发降级，但保留类型便于诊断日志区分。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// ParseError 表示页面拿到了，但预期的结构不存在（改版/拦截页等）。
type ParseError struct {
	Source string
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	if e == nil {
		return "parse error"
	}
	return fmt.Sprintf("%s 解析失败（%s）：%s", e.Source, e.URL, e.Reason)
}
