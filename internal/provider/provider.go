package provider

import (
	"context"
	"net/http"

	"github.com/John-Robertt/MCAT/internal/domain"
)

// Provider 把“站点变化”限制在 provider 包内部；核心流程只依赖统一接口与稳定的 Meta。
//
// 约束：
// - Fetch 负责“搜索定位详情页 + 抓取详情页”，不做缓存、不做重试、不做限速
//   （这些由核心 http/cache 层统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出
// - pageURL 必须是详情页（用于 report 的 website 追溯）
type Provider interface {
	Name() string
	Fetch(ctx context.Context, title string, c *http.Client) (html []byte, pageURL string, err error)
	Parse(title string, html []byte, pageURL string) (domain.Meta, error)
}
