package sukebei

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/auv-sh/avgo/internal/domain"
	"github.com/auv-sh/avgo/internal/extract"
	providerx "github.com/auv-sh/avgo/internal/provider"
)

// Provider 实现种子索引源 Sukebei 的抓取与解析。
// 它是磁力数据的唯一来源，同时也是元数据链路全部失败后的兜底：
// 种子标题里往往带有 CODE、分辨率、体积等可提取的碎片信息。
//
// 约束：
// - 列表页一行即一条种子，磁力链接直接在行内，不需要进详情页
// - 行内字段（体积/日期/做种数）权威；标题内字段（分辨率/编码）只是提示
type Provider struct {
	// BaseURL 仅用于测试替换；为空时使用默认站点。
	BaseURL string
}

func (Provider) Name() string { return "sukebei" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://sukebei.nyaa.si"
	}
	return strings.TrimRight(u, "/")
}

func (p Provider) searchURL(query string) string {
	return p.baseURL() + "/?f=0&c=0_0&q=" + url.QueryEscape(query)
}

// FetchDetail 按 CODE 搜索种子列表，把标题含 CODE 的行聚合成一条部分记录。
// 产出以磁力为主：标题、日期、分辨率等都是从种子行尽力提取的碎片。
func (p Provider) FetchDetail(ctx context.Context, code domain.Code, c *http.Client) (domain.Detail, error) {
	if code == "" {
		return domain.Detail{}, errors.New("code 不能为空")
	}
	html, err := providerx.FetchURL(ctx, c, p.searchURL(string(code)))
	if err != nil {
		return domain.Detail{}, err
	}
	return ParseDetail(code, html)
}

// Search 按自由文本搜索，从种子标题提取 CODE 去重后返回条目。
func (p Provider) Search(ctx context.Context, query string, c *http.Client) ([]domain.Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query 不能为空")
	}
	html, err := providerx.FetchURL(ctx, c, p.searchURL(query))
	if err != nil {
		return nil, err
	}
	items := ParseItems(html)
	if len(items) == 0 {
		return nil, &providerx.NotFoundError{Source: "sukebei", Query: query}
	}
	return items, nil
}

// Top 取首页（默认按时间倒序）的最新种子作为条目列表。
func (p Provider) Top(ctx context.Context, limit int, c *http.Client) ([]domain.Item, error) {
	html, err := providerx.FetchURL(ctx, c, p.baseURL()+"/?f=0&c=0_0")
	if err != nil {
		return nil, err
	}
	items := ParseItems(html)
	if len(items) == 0 {
		return nil, &providerx.NotFoundError{Source: "sukebei", Query: "top"}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ---- 纯解析 ----

// Row 是列表页的一行种子。
type Row struct {
	Title     string
	Magnet    string
	Size      string
	Date      string
	Seeders   int
	Leechers  int
	Downloads int
}

// ParseRows 解析列表页的种子行。站点是 nyaa 系模板：
// table.torrent-list > tbody > tr，标题列带 colspan，链接列含 magnet。
func ParseRows(html []byte) []Row {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}
	var rows []Row
	doc.Find("table.torrent-list tbody tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 8 {
			return
		}
		// 标题列里除了标题链接还有评论数链接，取最后一个 a 才是标题。
		title := normSpace(tds.Eq(1).Find("a").Last().Text())
		if title == "" {
			return
		}
		magnet, _ := tds.Eq(2).Find("a[href^='magnet:']").First().Attr("href")
		rows = append(rows, Row{
			Title:     title,
			Magnet:    strings.TrimSpace(magnet),
			Size:      normSpace(tds.Eq(3).Text()),
			Date:      normSpace(tds.Eq(4).Text()),
			Seeders:   atoi(tds.Eq(5).Text()),
			Leechers:  atoi(tds.Eq(6).Text()),
			Downloads: atoi(tds.Eq(7).Text()),
		})
	})
	return rows
}

// ParseItems 把种子行折叠为 code+title 条目（按 CODE 去重，保持行序）。
func ParseItems(html []byte) []domain.Item {
	rows := ParseRows(html)
	seen := make(map[domain.Code]struct{}, len(rows))
	var items []domain.Item
	for _, r := range rows {
		c, ok := extract.Code(r.Title)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		items = append(items, domain.Item{Code: c, Title: r.Title})
	}
	return items
}

// ParseDetail 把标题匹配 CODE 的种子行聚合为一条部分记录。
func ParseDetail(code domain.Code, html []byte) (domain.Detail, error) {
	rows := ParseRows(html)
	var matched []Row
	for _, r := range rows {
		if c, ok := extract.Code(r.Title); ok && c == code {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return domain.Detail{}, &providerx.NotFoundError{Source: "sukebei", Query: string(code)}
	}

	d := domain.Detail{Code: code}
	for _, r := range matched {
		if r.Magnet == "" {
			continue
		}
		mi := domain.MagnetInfo{
			URL:        r.Magnet,
			Name:       r.Title,
			Size:       r.Size,
			Date:       r.Date,
			Seeders:    r.Seeders,
			Leechers:   r.Leechers,
			Downloads:  r.Downloads,
			Resolution: extract.Resolution(r.Title),
			Codec:      extract.Codec(r.Title),
		}
		if bytesN, _, ok := extract.SizeToBytes(r.Size); ok {
			if min := extract.DurationMinutes(r.Title); min > 0 {
				mi.AvgBitrateMbps = extract.AvgBitrateMbps(bytesN, min)
			}
		}
		d.MagnetInfos = append(d.MagnetInfos, mi)
		d.Magnets = append(d.Magnets, mi.URL)
	}

	// 元数据碎片只从首个匹配行取：该行在站点默认排序下最新。
	first := matched[0]
	d.Title = first.Title
	d.ReleaseDate = extract.ReleaseDate(first.Title)
	if len(d.MagnetInfos) == 0 {
		// 行都匹配但一条磁力都没有，等同于没查到。
		return domain.Detail{}, &providerx.NotFoundError{Source: "sukebei", Query: string(code)}
	}

	d.Normalize()
	return d, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
