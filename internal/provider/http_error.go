package provider

import (
	"fmt"
	"strings"
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
// provider.Fetch 可以返回该错误，让上层生成更可操作的 error_msg。
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

// NoResultError 表示搜索页没有给出任何可用的详情页链接。
// 产品约束：宁可报“未搜到”，也不猜一个不相干的条目写进目录。
type NoResultError struct {
	Provider string
	Title    string
}

func (e *NoResultError) Error() string {
	if e == nil {
		return "no result"
	}
	return fmt.Sprintf("%s 搜索不到：%q", e.Provider, e.Title)
}
