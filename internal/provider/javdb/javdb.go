package javdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/auv-sh/avgo/internal/domain"
	"github.com/auv-sh/avgo/internal/extract"
	providerx "github.com/auv-sh/avgo/internal/provider"
)

// Provider 实现主元数据源 JavDB 的页面抓取与 HTML 解析。
//
// 约束：
// - JavDB 需要先搜索再进入详情页（不能直接拼详情 URL）
// - Fetch* 只负责定位页面；Parse* 必须是纯函数（相同输入 => 相同输出）
// - 磁力数据并不可靠：页面有就带上，缺失由编排层从种子索引源补齐
type Provider struct {
	// BaseURL 允许指定可用镜像域名（例如 javdb565.com），用于绕过区域不可达。
	// 为空时使用默认的 https://javdb.com。
	BaseURL string
}

func (Provider) Name() string { return "javdb" }

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://javdb.com"
	}
	return strings.TrimRight(u, "/")
}

func (p Provider) searchURL(q string) string {
	return p.baseURL() + "/search?q=" + url.QueryEscape(q) + "&f=all"
}

// FetchDetail 先搜索再进入详情页。搜索偶尔会直接渲染出详情页
//（站点对精确 CODE 查询做了跳转），此时就地解析搜索响应。
func (p Provider) FetchDetail(ctx context.Context, code domain.Code, c *http.Client) (domain.Detail, error) {
	if code == "" {
		return domain.Detail{}, errors.New("code 不能为空")
	}

	searchURL := p.searchURL(string(code))
	searchHTML, err := providerx.FetchURL(ctx, c, searchURL)
	if err != nil {
		return domain.Detail{}, err
	}

	if isDetailPage(searchHTML) {
		return ParseDetail(code, searchHTML, searchURL)
	}

	href, ok := findDetailHref(searchHTML)
	if !ok {
		return domain.Detail{}, &providerx.NotFoundError{Source: "javdb", Query: string(code)}
	}
	pageURL := providerx.ResolveURL(p.baseURL()+"/", href)
	html, err := providerx.FetchURL(ctx, c, pageURL)
	if err != nil {
		return domain.Detail{}, err
	}
	return ParseDetail(code, html, pageURL)
}

// Search 按自由文本搜索，返回 code+title 列表。
func (p Provider) Search(ctx context.Context, query string, c *http.Client) ([]domain.Item, error) {
	html, err := providerx.FetchURL(ctx, c, p.searchURL(query))
	if err != nil {
		return nil, err
	}
	return ParseItems(html)
}

// ListActor 用演员维度的搜索列出作品。
func (p Provider) ListActor(ctx context.Context, actor string, c *http.Client) ([]domain.Item, error) {
	u := p.baseURL() + "/search?q=" + url.QueryEscape(actor) + "&f=actor"
	html, err := providerx.FetchURL(ctx, c, u)
	if err != nil {
		return nil, err
	}
	return ParseItems(html)
}

// Top 依次翻“最新 / 热门”两个排序页，凑满 limit 为止。
func (p Provider) Top(ctx context.Context, limit int, c *http.Client) ([]domain.Item, error) {
	endpoints := []string{
		p.baseURL() + "/videos?o=mr", // most recent
		p.baseURL() + "/videos?o=tr", // trending
	}
	items := make([]domain.Item, 0, limit)
	seen := make(map[domain.Code]struct{}, limit)
	for _, u := range endpoints {
		html, err := providerx.FetchURL(ctx, c, u)
		if err != nil {
			continue
		}
		page, perr := ParseItems(html)
		if perr != nil {
			continue
		}
		for _, it := range page {
			if _, ok := seen[it.Code]; ok {
				continue
			}
			seen[it.Code] = struct{}{}
			items = append(items, it)
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// Actors 抓取演员热度榜。站点没有显式热度指标，用呈现顺序推导
//（排位靠前热度高），因此榜单只在同一次抓取内可比。
func (p Provider) Actors(ctx context.Context, page, perPage int, uncensoredOnly bool, c *http.Client) ([]domain.ActorRank, int, error) {
	var endpoints []string
	if uncensoredOnly {
		endpoints = []string{fmt.Sprintf(p.baseURL()+"/actors/uncensored?page=%d", page)}
	} else {
		endpoints = []string{
			fmt.Sprintf(p.baseURL()+"/actors?o=tr&page=%d", page),
			fmt.Sprintf(p.baseURL()+"/rankings/actors?period=w&page=%d", page),
			fmt.Sprintf(p.baseURL()+"/rankings/actors?period=m&page=%d", page),
		}
	}

	totalPages := 0
	for _, u := range endpoints {
		html, err := providerx.FetchURL(ctx, c, u)
		if err != nil {
			continue
		}
		ranks, pages := ParseActors(html, perPage)
		if pages > totalPages {
			totalPages = pages
		}
		if len(ranks) > 0 {
			if totalPages == 0 {
				totalPages = page
			}
			return ranks, totalPages * perPage, nil
		}
	}
	return nil, 0, &providerx.NotFoundError{Source: "javdb", Query: "actors"}
}

// FetchPlayURL 查找在线观看页链接：先在搜索页找，找不到再进详情页找；
// 都没有时退化返回搜索页 URL（用户至少可以人工点进去）。
func (p Provider) FetchPlayURL(ctx context.Context, code domain.Code, c *http.Client) (string, error) {
	if code == "" {
		return "", errors.New("code 不能为空")
	}
	searchURL := p.searchURL(string(code))
	searchHTML, err := providerx.FetchURL(ctx, c, searchURL)
	if err != nil {
		return "", err
	}
	if play, ok := findPlayHref(searchHTML); ok {
		return providerx.ResolveURL(p.baseURL()+"/", play), nil
	}
	if href, ok := findDetailHref(searchHTML); ok {
		pageURL := providerx.ResolveURL(p.baseURL()+"/", href)
		html, ferr := providerx.FetchURL(ctx, c, pageURL)
		if ferr == nil {
			if play, ok := findPlayHref(html); ok {
				return providerx.ResolveURL(p.baseURL()+"/", play), nil
			}
		}
	}
	return searchURL, nil
}

// ---- 纯解析 ----

var magnetRE = regexp.MustCompile(`magnet:\?xt=urn:[^"'\s<>]+`)

// isDetailPage 判断响应是不是详情页（搜索可能直接渲染详情）。
func isDetailPage(html []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(".video-meta-panel").Length() > 0
}

// ParseDetail 把详情页 HTML 解析为部分记录。
// 字段提取是按优先级排列的策略梯队：结构化面板 > 命名链接 > 全文启发式 > JSON-LD。
func ParseDetail(code domain.Code, html []byte, pageURL string) (domain.Detail, error) {
	if len(html) == 0 {
		return domain.Detail{}, &providerx.ParseError{Source: "javdb", URL: pageURL, Reason: "html 为空"}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.Detail{}, err
	}

	// 标题：原标题（origin-title，可能 display:none 但文本仍可读）优先，
	// 回退当前标题，再回退 <title>。
	title := normSpace(doc.Find("h2.title span.origin-title").First().Text())
	if title == "" {
		title = normSpace(doc.Find("h2.title strong.current-title").First().Text())
	}
	if title == "" {
		title = normSpace(doc.Find(".title strong").First().Text())
	}
	if title == "" {
		title = normSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return domain.Detail{}, &providerx.ParseError{Source: "javdb", URL: pageURL, Reason: "标题为空（疑似拦截页）"}
	}

	d := domain.Detail{Title: title}

	// 结构化面板：strong 标签名 + span.value 值。
	doc.Find("nav.movie-panel-info .panel-block, .panel-block").Each(func(_ int, s *goquery.Selection) {
		h := normHeader(s.Find("strong").First().Text())
		val := s.Find("span.value").First()
		valText := strings.TrimSpace(val.Text())
		switch h {
		case "番號", "番号", "ID":
			if d.Code == "" {
				if c, ok := extract.Code(valText); ok {
					d.Code = c
				}
			}
		case "日期", "Date", "Released Date":
			if d.ReleaseDate == "" {
				d.ReleaseDate = valText
			}
		case "時長", "时长", "Length", "Duration":
			if d.DurationM == 0 {
				d.DurationM = firstInt(valText)
			}
		case "導演", "导演", "Director":
			if d.Director == "" {
				d.Director = strings.TrimSpace(val.Find("a").First().Text())
			}
		case "片商", "Maker", "Studio", "Manufacturer":
			if d.Studio == "" {
				d.Studio = strings.TrimSpace(val.Find("a").First().Text())
			}
		case "系列", "Series":
			if d.Series == "" {
				d.Series = strings.TrimSpace(val.Find("a").First().Text())
			}
		case "評分", "评分", "Rating":
			if d.Rating == 0 {
				d.Rating = extract.Rating("Rating " + valText)
			}
		case "類別", "类别", "Tags", "Genres":
			val.Find("a").Each(func(_ int, a *goquery.Selection) {
				d.Genres = append(d.Genres, strings.TrimSpace(a.Text()))
			})
		case "演員", "演员", "Actors", "Actress", "Cast":
			val.Find("a").Each(func(_ int, a *goquery.Selection) {
				d.Actors = append(d.Actors, strings.TrimSpace(a.Text()))
			})
		}
	})

	// 命名链接兜底（面板没覆盖到的字段）。
	if len(d.Actors) == 0 {
		doc.Find(".panel-block a[href*='/actors/']").Each(func(_ int, a *goquery.Selection) {
			d.Actors = append(d.Actors, strings.TrimSpace(a.Text()))
		})
	}
	if d.Director == "" {
		d.Director = strings.TrimSpace(doc.Find("a[href*='/directors/']").First().Text())
	}
	if d.Studio == "" {
		d.Studio = strings.TrimSpace(doc.Find("a[href*='/makers/'], a[href*='/studios/']").First().Text())
	}
	if d.Label == "" {
		d.Label = strings.TrimSpace(doc.Find("a[href*='/labels/']").First().Text())
	}
	if d.Series == "" {
		d.Series = strings.TrimSpace(doc.Find("a[href*='/series/']").First().Text())
	}
	doc.Find(".panel-block a.tag, .panel-block a[href*='/tags/']").Each(func(_ int, a *goquery.Selection) {
		d.Genres = append(d.Genres, strings.TrimSpace(a.Text()))
	})
	d.Actors = normList(d.Actors)
	d.Genres = normList(d.Genres)

	// 封面：大图 > cover img > og:image。
	if href, ok := doc.Find(".column-video-cover a[data-fancybox='gallery']").First().Attr("href"); ok {
		d.CoverURL = providerx.ResolveURL(pageURL, href)
	}
	if d.CoverURL == "" {
		if src, ok := doc.Find("img.video-cover, .video-cover img").First().Attr("src"); ok {
			d.CoverURL = providerx.ResolveURL(pageURL, src)
		}
	}
	if d.CoverURL == "" {
		if content, ok := doc.Find("meta[property='og:image']").First().Attr("content"); ok {
			d.CoverURL = strings.TrimSpace(content)
		}
	}

	// 剧情：面板里第一段足够长的文本。
	doc.Find(".panel-block .value pre, .panel-block .value p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := strings.TrimSpace(s.Text())
		if len(t) > 10 {
			d.Plot = t
			return false
		}
		return true
	})

	// 预览图。
	doc.Find(".preview-images img, .tile-images a.tile-item img, .sample-box img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" {
			d.PreviewImages = append(d.PreviewImages, providerx.ResolveURL(pageURL, src))
		}
	})
	d.PreviewImages = normList(d.PreviewImages)

	// 全文启发式兜底：散落的时长/评分/日期。
	bodyText := doc.Text()
	if d.DurationM == 0 {
		d.DurationM = extract.DurationMinutes(bodyText)
	}
	if d.Rating == 0 {
		d.Rating = extract.Rating(bodyText)
	}
	if d.ReleaseDate == "" {
		d.ReleaseDate = extract.ReleaseDate(bodyText)
	}

	// 页面内嵌的磁力链接（JavDB 不保证有；缺失由编排层补齐）。
	d.Magnets = normList(magnetRE.FindAllString(string(html), -1))
	for _, m := range d.Magnets {
		d.MagnetInfos = append(d.MagnetInfos, domain.MagnetInfo{URL: m})
	}

	// JSON-LD（VideoObject/Movie）补齐剩余缺口。
	fillFromLDJSON(&d, doc)

	if d.Code == "" {
		if c, ok := extract.Code(title); ok {
			d.Code = c
		} else {
			d.Code = code
		}
	}
	d.Normalize()
	return d, nil
}

// ParseItems 解析搜索/列表页的作品卡片。
func ParseItems(html []byte) ([]domain.Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	var items []domain.Item
	doc.Find(".movie-list .item a.box, .movie-list a[href^='/v/'], a.box[href^='/v/']").Each(func(_ int, a *goquery.Selection) {
		title := normSpace(a.Find(".video-title").First().Text())
		if title == "" {
			title = normSpace(a.Text())
		}
		code, ok := extract.Code(title)
		if !ok {
			// 链接尾段偶尔带 CODE（如 /v/ABC-123）；再试一次。
			href, _ := a.Attr("href")
			if i := strings.LastIndex(href, "/"); i >= 0 {
				code, ok = extract.Code(href[i+1:])
			}
		}
		if !ok || title == "" {
			return
		}
		items = append(items, domain.Item{Code: code, Title: title})
	})
	return items, nil
}

// ParseActors 解析演员榜单页。返回条目与估算的总页数（取分页控件的最大页码）。
func ParseActors(html []byte, perPage int) ([]domain.ActorRank, int) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, 0
	}

	totalPages := 0
	doc.Find(".pagination-list a.pagination-link").Each(func(_ int, a *goquery.Selection) {
		if n := firstInt(a.Text()); n > totalPages {
			totalPages = n
		}
	})

	// 首选演员网格结构。
	var ranks []domain.ActorRank
	doc.Find("#actors .actor-box a, .actors .actor-box a").Each(func(idx int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Find("strong").First().Text())
		if name == "" {
			// title 属性可能是逗号分隔的多个艺名；取第一个。
			if title, ok := a.Attr("title"); ok {
				name = strings.TrimSpace(strings.SplitN(title, ",", 2)[0])
			}
		}
		if name == "" {
			return
		}
		ranks = append(ranks, domain.ActorRank{Name: name, Hot: hotFromOrder(idx, perPage)})
	})
	if len(ranks) > 0 {
		if perPage > 0 && len(ranks) > perPage {
			ranks = ranks[:perPage]
		}
		return ranks, totalPages
	}

	// 旧版布局兜底：演员锚点去重，同名保留最高排位。
	best := map[string]int{}
	order := []string{}
	doc.Find("a[href^='/actors/']").Each(func(idx int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}
		hot := hotFromOrder(idx, perPage)
		if prev, ok := best[name]; ok {
			if hot > prev {
				best[name] = hot
			}
			return
		}
		best[name] = hot
		order = append(order, name)
	})
	for _, name := range order {
		ranks = append(ranks, domain.ActorRank{Name: name, Hot: best[name]})
	}
	if perPage > 0 && len(ranks) > perPage {
		ranks = ranks[:perPage]
	}
	return ranks, totalPages
}

// hotFromOrder 把呈现顺序换算为热度（靠前热度高，下限 1）。
func hotFromOrder(idx, perPage int) int {
	h := perPage - idx
	if h < 1 {
		h = 1
	}
	return h
}

func findDetailHref(searchHTML []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(searchHTML))
	if err != nil {
		return "", false
	}
	// 多套选择器按优先级尝试：站点改版时通常只坏一套。
	selectors := []string{
		".movie-list .item a.box",
		".movie-list a[href^='/v/']",
		"a.box[href^='/v/']",
		"a[href^='/v/']",
	}
	for _, sel := range selectors {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return href, true
		}
	}
	return "", false
}

func findPlayHref(html []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", false
	}
	href, ok := doc.Find("a.cover-container[href*='play'], .cover-container[href*='play'], a[href*='play']").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", false
	}
	return href, true
}

// ldVideo 是 JSON-LD VideoObject/Movie 的最小解码目标。
// image 可能是字符串或数组，用 RawMessage 延后判断。
type ldVideo struct {
	Type        string          `json:"@type"`
	Description string          `json:"description"`
	Duration    string          `json:"duration"`
	Image       json.RawMessage `json:"image"`
	Actor       []struct {
		Name string `json:"name"`
	} `json:"actor"`
	ProductionCompany struct {
		Name string `json:"name"`
	} `json:"productionCompany"`
}

func fillFromLDJSON(d *domain.Detail, doc *goquery.Document) {
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		var v ldVideo
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return true
		}
		if !strings.EqualFold(v.Type, "VideoObject") && !strings.EqualFold(v.Type, "Movie") {
			return true
		}
		if d.Plot == "" && strings.TrimSpace(v.Description) != "" {
			d.Plot = strings.TrimSpace(v.Description)
		}
		if d.DurationM == 0 {
			d.DurationM = extract.ISODurationMinutes(v.Duration)
		}
		if len(d.Actors) == 0 {
			for _, a := range v.Actor {
				if n := strings.TrimSpace(a.Name); n != "" {
					d.Actors = append(d.Actors, n)
				}
			}
		}
		if len(d.PreviewImages) == 0 && len(v.Image) > 0 {
			var one string
			var many []string
			if err := json.Unmarshal(v.Image, &one); err == nil && one != "" {
				d.PreviewImages = []string{one}
			} else if err := json.Unmarshal(v.Image, &many); err == nil {
				d.PreviewImages = normList(many)
			}
		}
		if d.Studio == "" && strings.TrimSpace(v.ProductionCompany.Name) != "" {
			d.Studio = strings.TrimSpace(v.ProductionCompany.Name)
		}
		return false
	})
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

func normHeader(s string) string {
	s = normSpace(s)
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSuffix(s, "：")
	return strings.TrimSpace(s)
}

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
	s = strings.TrimSpace(s)
	n := 0
	seen := false
	for _, r := range s {
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
