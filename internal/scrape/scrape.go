package scrape

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/auv-sh/avgo/internal/config"
	"github.com/auv-sh/avgo/internal/domain"
	"github.com/auv-sh/avgo/internal/extract"
	"github.com/auv-sh/avgo/internal/merge"
	"github.com/auv-sh/avgo/internal/provider"
	"github.com/auv-sh/avgo/internal/provider/dmm"
	"github.com/auv-sh/avgo/internal/provider/javdb"
	"github.com/auv-sh/avgo/internal/provider/javlibrary"
	"github.com/auv-sh/avgo/internal/provider/sukebei"
)

// Sources 是编排层依赖的来源集合。字段可以为 nil（该位置的来源不可用），
// 编排逻辑据此跳过对应环节。测试用桩实现替换各字段。
type Sources struct {
	Catalog   provider.Detailer // 商业目录（凭证启用时才参与）
	Primary   provider.Source   // 主元数据源
	Secondary provider.Detailer // 次要元数据源
	Torrent   provider.Source   // 种子索引（磁力唯一来源 + 最终兜底）
}

// Engine 把多来源的部分记录按固定优先级合并为最终结果。
//
// 约束：
// - 单个来源的任何失败都不往上冒：记 debug 日志后降级到下一来源
// - 合并方向固定：先到的记录是主记录，后续来源只填空缺（磁力除外，做并集）
// - 全链路失败才返回 NotFoundError，调用方看不到中途的传输/解析错误
type Engine struct {
	client *http.Client
	log    zerolog.Logger
	src    Sources
}

func New(client *http.Client, log zerolog.Logger, src Sources) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	return &Engine{client: client, log: log, src: src}
}

// Default 按配置装配真实来源。商业目录仅在显式开启时进入链路；
// 凭证缺失的兜底判断在 adapter 内部（返回 ErrDisabled）。
func Default(cfg config.Effective, client *http.Client, log zerolog.Logger) *Engine {
	src := Sources{
		Primary:   javdb.Provider{BaseURL: cfg.JavDBBaseURL},
		Secondary: javlibrary.Provider{},
		Torrent:   sukebei.Provider{},
	}
	if cfg.UseDMM {
		src.Catalog = dmm.Provider{APIID: cfg.DMMAPIID, AffiliateID: cfg.DMMAffiliateID}
	}
	return New(client, log, src)
}

// FetchDetail 按 目录 -> 主源 -> 次源 -> 种子索引 的顺序取第一份可用记录，
// 再做方向性补全：
//   - 目录记录只从次源补五个弱项字段（目录数据结构化程度高但文案/演员常缺）
//   - 主源记录从次源整体补空缺
//   - 磁力始终最后从种子索引补（目录和元数据源的磁力缺失是常态）
func (e *Engine) FetchDetail(ctx context.Context, code domain.Code) (domain.Detail, error) {
	if d, ok := e.tryDetail(ctx, e.src.Catalog, code); ok {
		d = e.fillCatalogGaps(ctx, d, code)
		d = e.backfillMagnets(ctx, d, code)
		return d, nil
	}

	if d, ok := e.tryDetail(ctx, e.src.Primary, code); ok {
		if s, ok := e.tryDetail(ctx, e.src.Secondary, code); ok {
			d = merge.Fill(d, s)
		}
		d = e.backfillMagnets(ctx, d, code)
		return d, nil
	}

	if d, ok := e.tryDetail(ctx, e.src.Secondary, code); ok {
		d = e.backfillMagnets(ctx, d, code)
		return d, nil
	}

	if d, ok := e.tryDetail(ctx, e.src.Torrent, code); ok {
		return d, nil
	}

	return domain.Detail{}, &provider.NotFoundError{Source: "all", Query: string(code)}
}

// Search 处理自由文本查询。查询本身就是 CODE 时直接走详情链路，
// 命中则折叠为单条目；否则主源搜索，空结果再降级到种子索引。
func (e *Engine) Search(ctx context.Context, query string) ([]domain.Item, error) {
	query = strings.TrimSpace(query)
	if extract.LooksLikeCode(query) {
		if c, ok := extract.Code(query); ok {
			if d, err := e.FetchDetail(ctx, c); err == nil {
				return []domain.Item{{Code: d.Code, Title: d.Title}}, nil
			}
		}
	}

	if e.src.Primary != nil {
		items, err := e.src.Primary.Search(ctx, query, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Primary.Name(), "search", err)
	}
	if e.src.Torrent != nil {
		items, err := e.src.Torrent.Search(ctx, query, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Torrent.Name(), "search", err)
	}
	return nil, &provider.NotFoundError{Source: "all", Query: query}
}

// ListActor 列出演员作品：主源具备专门能力时优先，否则退化为种子索引搜索。
func (e *Engine) ListActor(ctx context.Context, actor string) ([]domain.Item, error) {
	if al, ok := e.src.Primary.(provider.ActorLister); ok {
		items, err := al.ListActor(ctx, actor, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Primary.Name(), "list-actor", err)
	}
	if e.src.Torrent != nil {
		items, err := e.src.Torrent.Search(ctx, actor, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Torrent.Name(), "list-actor", err)
	}
	return nil, &provider.NotFoundError{Source: "all", Query: actor}
}

// Top 列出最新/热门作品，主源优先，种子索引兜底。
func (e *Engine) Top(ctx context.Context, limit int) ([]domain.Item, error) {
	if tl, ok := e.src.Primary.(provider.TopLister); ok {
		items, err := tl.Top(ctx, limit, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Primary.Name(), "top", err)
	}
	if tl, ok := e.src.Torrent.(provider.TopLister); ok {
		items, err := tl.Top(ctx, limit, e.client)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		e.debugErr(e.src.Torrent.Name(), "top", err)
	}
	return nil, &provider.NotFoundError{Source: "all", Query: "top"}
}

// Actors 返回演员热度榜的一页，按热度降序、同热度按名字升序排序。
// 热度榜只有主源提供，不做降级。
func (e *Engine) Actors(ctx context.Context, page, perPage int, uncensoredOnly bool) ([]domain.ActorRank, int, error) {
	ar, ok := e.src.Primary.(provider.ActorRanker)
	if !ok {
		return nil, 0, &provider.NotFoundError{Source: "all", Query: "actors"}
	}
	ranks, total, err := ar.Actors(ctx, page, perPage, uncensoredOnly, e.client)
	if err != nil {
		e.debugErr(e.src.Primary.Name(), "actors", err)
		return nil, 0, &provider.NotFoundError{Source: "all", Query: "actors"}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Hot != ranks[j].Hot {
			return ranks[i].Hot > ranks[j].Hot
		}
		return ranks[i].Name < ranks[j].Name
	})
	return ranks, total, nil
}

// PlayURL 查找在线观看页地址。只有主源提供该能力。
func (e *Engine) PlayURL(ctx context.Context, code domain.Code) (string, error) {
	pf, ok := e.src.Primary.(provider.PlayURLFinder)
	if !ok {
		return "", &provider.NotFoundError{Source: "all", Query: string(code)}
	}
	u, err := pf.FetchPlayURL(ctx, code, e.client)
	if err != nil {
		e.debugErr(e.src.Primary.Name(), "play-url", err)
		return "", &provider.NotFoundError{Source: "all", Query: string(code)}
	}
	return u, nil
}

// ---- 内部环节 ----

func (e *Engine) tryDetail(ctx context.Context, d provider.Detailer, code domain.Code) (domain.Detail, bool) {
	if d == nil {
		return domain.Detail{}, false
	}
	det, err := d.FetchDetail(ctx, code, e.client)
	if err != nil {
		e.debugErr(d.Name(), "detail", err)
		return domain.Detail{}, false
	}
	return det, true
}

// fillCatalogGaps 只在目录记录缺这五个字段中的任意一个时才去请求次源：
// 文案、演员、封面、发行日期、时长。其余字段以目录为准，不做整体合并。
func (e *Engine) fillCatalogGaps(ctx context.Context, d domain.Detail, code domain.Code) domain.Detail {
	if d.Plot != "" && len(d.Actors) > 0 && d.CoverURL != "" && d.ReleaseDate != "" && d.DurationM > 0 {
		return d
	}
	s, ok := e.tryDetail(ctx, e.src.Secondary, code)
	if !ok {
		return d
	}
	if d.Plot == "" {
		d.Plot = s.Plot
	}
	if len(d.Actors) == 0 {
		d.Actors = s.Actors
	}
	if d.CoverURL == "" {
		d.CoverURL = s.CoverURL
	}
	if d.ReleaseDate == "" {
		d.ReleaseDate = s.ReleaseDate
	}
	if d.DurationM == 0 {
		d.DurationM = s.DurationM
	}
	d.Normalize()
	return d
}

// backfillMagnets 在记录完全没有磁力时向种子索引要一份，并做并集合并。
func (e *Engine) backfillMagnets(ctx context.Context, d domain.Detail, code domain.Code) domain.Detail {
	if len(d.MagnetInfos) > 0 || len(d.Magnets) > 0 {
		return d
	}
	t, ok := e.tryDetail(ctx, e.src.Torrent, code)
	if !ok {
		return d
	}
	d.MagnetInfos = merge.AggregateMagnets(d.MagnetInfos, t.MagnetInfos)
	d.Magnets = merge.AggregateURIs(d.Magnets, t.Magnets)
	d.Normalize()
	return d
}

func (e *Engine) debugErr(source, op string, err error) {
	if err == nil {
		return
	}
	e.log.Debug().Str("source", source).Str("op", op).Err(err).Msg("来源降级")
}
