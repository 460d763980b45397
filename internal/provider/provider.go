package provider

import (
	"context"
	"net/http"

	"github.com/auv-sh/avgo/internal/domain"
)

// 本包把“站点差异”限制在各来源子包内部；编排层只依赖统一的能力接口
// 与稳定的 domain.Detail。
//
// 约束：
// - 实现不做缓存、不做重试、不做限速（失败即视为“该来源无答案”，由编排层降级）
// - 返回的 Detail.Code 必须已规范化（大写 + '-' 分隔）
// - “查过但没有”必须返回 *NotFoundError；传输/解析失败返回各自的错误类型，
//   让调用方能区分“确认不存在”与“没能查成”
// - 所有字段在 adapter 边界上都是可缺失的：解析时不得假设字段存在

// Detailer 按 CODE 抓取一条部分记录。所有来源都实现它。
type Detailer interface {
	Name() string
	FetchDetail(ctx context.Context, code domain.Code, c *http.Client) (domain.Detail, error)
}

// Searcher 按自由文本搜索，返回 code+title 列表。
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, c *http.Client) ([]domain.Item, error)
}

// Source 同时具备搜索与详情能力。
type Source interface {
	Detailer
	Searcher
}

// 以下是只有部分来源支持的可选能力。

// PlayURLFinder 查找在线观看页 URL。
type PlayURLFinder interface {
	FetchPlayURL(ctx context.Context, code domain.Code, c *http.Client) (string, error)
}

// TopLister 列出最新/热门作品。
type TopLister interface {
	Top(ctx context.Context, limit int, c *http.Client) ([]domain.Item, error)
}

// ActorLister 列出某演员的作品。
type ActorLister interface {
	ListActor(ctx context.Context, actor string, c *http.Client) ([]domain.Item, error)
}

// ActorRanker 分页列出演员热度榜，并返回估算的条目总数。
type ActorRanker interface {
	Actors(ctx context.Context, page, perPage int, uncensoredOnly bool, c *http.Client) ([]domain.ActorRank, int, error)
}
