package javlibrary

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/auv-sh/avgo/internal/domain"
	"github.com/auv-sh/avgo/internal/extract"
	providerx "github.com/auv-sh/avgo/internal/provider"
)

// Provider 实现次要元数据源 JavLibrary 的抓取与解析。
// 字段与主源大量重叠，定位是给主源补缺口（plot 之外的结构化字段较全）。
//
// 约束：
// - 站点分语言入口，en 命中率最高；按 en -> cn -> ja 依次尝试
// - 页面用 id 锚定字段（#video_id/#video_date/...），解析必须是纯函数
type Provider struct {
	// BaseURL 仅用于测试替换；为空时使用默认站点。
	BaseURL string
}

func (Provider) Name() string { return "javlibrary" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://www.javlibrary.com"
	}
	return strings.TrimRight(u, "/")
}

var locales = []string{"en", "cn", "ja"}

// FetchDetail 先按 CODE 搜索拿到首个结果链接，再进详情页解析。
func (p Provider) FetchDetail(ctx context.Context, code domain.Code, c *http.Client) (domain.Detail, error) {
	if code == "" {
		return domain.Detail{}, errors.New("code 不能为空")
	}

	var (
		searchHTML []byte
		searchURL  string
		lastErr    error
	)
	for _, loc := range locales {
		u := p.baseURL() + "/" + loc + "/vl_searchbyid.php?keyword=" + url.QueryEscape(string(code))
		b, err := providerx.FetchURL(ctx, c, u)
		if err != nil {
			lastErr = err
			continue
		}
		searchHTML, searchURL = b, u
		break
	}
	if searchHTML == nil {
		if lastErr == nil {
			lastErr = &providerx.NotFoundError{Source: "javlibrary", Query: string(code)}
		}
		return domain.Detail{}, lastErr
	}

	// 精确命中时站点会直接渲染详情页。
	if isDetailPage(searchHTML) {
		return ParseDetail(code, searchHTML, searchURL)
	}

	href, ok := findDetailHref(searchHTML)
	if !ok {
		return domain.Detail{}, &providerx.NotFoundError{Source: "javlibrary", Query: string(code)}
	}
	pageURL := providerx.ResolveURL(searchURL, href)
	html, err := providerx.FetchURL(ctx, c, pageURL)
	if err != nil {
		return domain.Detail{}, err
	}
	return ParseDetail(code, html, pageURL)
}

// ---- 纯解析 ----

func isDetailPage(html []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find("#video_title").Length() > 0
}

func findDetailHref(searchHTML []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(searchHTML))
	if err != nil {
		return "", false
	}
	href, ok := doc.Find(".video a[href*='?v='], .videos .video a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return href, true
}

// ParseDetail 把详情页 HTML 解析为部分记录。
func ParseDetail(code domain.Code, html []byte, pageURL string) (domain.Detail, error) {
	if len(html) == 0 {
		return domain.Detail{}, &providerx.ParseError{Source: "javlibrary", URL: pageURL, Reason: "html 为空"}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.Detail{}, err
	}

	title := normSpace(doc.Find("#video_title").First().Text())
	if title == "" {
		return domain.Detail{}, &providerx.ParseError{Source: "javlibrary", URL: pageURL, Reason: "标题为空"}
	}
	// 标题通常以 CODE 开头；剥掉前缀让 Title 只保留标题本体。
	if c, ok := extract.Code(title); ok && strings.HasPrefix(strings.ToUpper(title), string(c)) {
		title = strings.TrimSpace(title[len(c):])
	}

	d := domain.Detail{Title: title}

	if idText := strings.TrimSpace(doc.Find("#video_id .text").First().Text()); idText != "" {
		if c, ok := extract.Code(idText); ok {
			d.Code = c
		}
	}
	if d.Code == "" {
		d.Code = code
	}

	d.ReleaseDate = strings.TrimSpace(doc.Find("#video_date .text").First().Text())
	if src, ok := doc.Find("#video_jacket_img").First().Attr("src"); ok {
		d.CoverURL = providerx.ResolveURL(pageURL, src)
	}
	doc.Find("#video_cast .star a").Each(func(_ int, a *goquery.Selection) {
		d.Actors = append(d.Actors, strings.TrimSpace(a.Text()))
	})
	d.Actors = normList(d.Actors)

	d.Director = strings.TrimSpace(doc.Find("#video_director .text a").First().Text())
	d.Studio = strings.TrimSpace(doc.Find("#video_maker .text a").First().Text())
	d.Label = strings.TrimSpace(doc.Find("#video_label .text a").First().Text())
	d.Series = strings.TrimSpace(doc.Find("#video_series .text a").First().Text())

	if t := doc.Find("#video_length .text").First().Text(); strings.TrimSpace(t) != "" {
		d.DurationM = firstInt(t)
	}
	if t := doc.Find("#video_review .score").First().Text(); strings.TrimSpace(t) != "" {
		d.Rating = extract.Rating("Score " + strings.Trim(strings.TrimSpace(t), "()"))
	}

	doc.Find("#video_genres .genre a").Each(func(_ int, a *goquery.Selection) {
		d.Genres = append(d.Genres, strings.TrimSpace(a.Text()))
	})
	d.Genres = normList(d.Genres)

	d.Normalize()
	return d, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

func normList(in []string) []string {
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstInt(s string) int {
	n := 0
	seen := false
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			seen = true
			continue
		}
		if seen {
			break
		}
	}
	if !seen {
		return 0
	}
	return n
}
