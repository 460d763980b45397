package dmm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/auv-sh/avgo/internal/domain"
	providerx "github.com/auv-sh/avgo/internal/provider"
)

// Provider 实现商业目录源 DMM 的 ItemList API 查询。
// 与页面抓取类来源不同，这里走官方 JSON API，需要成对的凭证。
//
// 约束：
// - APIID 与 AffiliateID 任一缺失即整体停用：FetchDetail 直接返回
//   ErrDisabled，不发起任何网络请求
// - API 不回传磁力数据；磁力由编排层从种子索引源补齐
// - API 不回显番号：返回记录的 Code 固定为查询用的 CODE
type Provider struct {
	APIID       string
	AffiliateID string

	// BaseURL 仅用于测试替换；为空时使用官方 API 地址。
	BaseURL string
}

func (Provider) Name() string { return "dmm" }

func (p Provider) enabled() bool {
	return strings.TrimSpace(p.APIID) != "" && strings.TrimSpace(p.AffiliateID) != ""
}

func (p Provider) baseURL() string {
	u := strings.TrimSpace(p.BaseURL)
	if u == "" {
		return "https://api.dmm.com/affiliate/v3/ItemList"
	}
	return u
}

// FetchDetail 用 keyword=CODE 查询 ItemList，取首个条目。
func (p Provider) FetchDetail(ctx context.Context, code domain.Code, c *http.Client) (domain.Detail, error) {
	if !p.enabled() {
		return domain.Detail{}, providerx.ErrDisabled
	}
	if code == "" {
		return domain.Detail{}, errors.New("code 不能为空")
	}

	q := url.Values{}
	q.Set("api_id", p.APIID)
	q.Set("affiliate_id", p.AffiliateID)
	q.Set("site", "DMM")
	q.Set("service", "digital")
	q.Set("floor", "videoa")
	q.Set("hits", "1")
	q.Set("sort", "-date")
	q.Set("keyword", string(code))

	body, err := providerx.FetchURL(ctx, c, p.baseURL()+"?"+q.Encode())
	if err != nil {
		return domain.Detail{}, err
	}
	return ParseItemList(code, body)
}

// itemList 是 ItemList API 响应的最小解码目标。
// 数值字段（评分/时长）在不同镜像上可能是字符串或数字，用 RawMessage 延后解析。
type itemList struct {
	Result struct {
		Items []apiItem `json:"items"`
	} `json:"result"`
}

type apiItem struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Volume   string `json:"volume"`
	ImageURL struct {
		List  string `json:"list"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"imageURL"`
	Duration json.RawMessage `json:"duration"`
	Review   struct {
		Average  json.RawMessage `json:"average"`
		Duration json.RawMessage `json:"duration"`
	} `json:"review"`
	ItemInfo struct {
		Actress  []namePair `json:"actress"`
		Genre    []namePair `json:"genre"`
		Director []namePair `json:"director"`
		Maker    []namePair `json:"maker"`
		Label    []namePair `json:"label"`
		Series   []namePair `json:"series"`
	} `json:"iteminfo"`
	SampleImageURL struct {
		SampleS struct {
			Image []string `json:"image"`
		} `json:"sample_s"`
	} `json:"sampleImageURL"`
}

type namePair struct {
	Name string `json:"name"`
}

// ParseItemList 解析 API 响应。无条目按 NotFound 处理（API 查询成功但没有结果）。
func ParseItemList(code domain.Code, body []byte) (domain.Detail, error) {
	var v itemList
	if err := json.Unmarshal(body, &v); err != nil {
		return domain.Detail{}, &providerx.ParseError{Source: "dmm", URL: "", Reason: "JSON 解析失败：" + err.Error()}
	}
	if len(v.Result.Items) == 0 {
		return domain.Detail{}, &providerx.NotFoundError{Source: "dmm", Query: string(code)}
	}
	it := v.Result.Items[0]

	d := domain.Detail{
		Code:  code,
		Title: strings.TrimSpace(it.Title),
	}

	d.CoverURL = firstNonEmpty(it.ImageURL.Large, it.ImageURL.List, it.ImageURL.Small)
	d.ReleaseDate = firstNonEmpty(strings.TrimSpace(it.Date), strings.TrimSpace(it.Volume))

	if m := rawInt(it.Review.Duration); m > 0 {
		d.DurationM = m
	} else if m := rawInt(it.Duration); m > 0 {
		d.DurationM = m
	}
	d.Rating = rawFloat(it.Review.Average)

	for _, a := range it.ItemInfo.Actress {
		if n := strings.TrimSpace(a.Name); n != "" {
			d.Actors = append(d.Actors, n)
		}
	}
	for _, g := range it.ItemInfo.Genre {
		if n := strings.TrimSpace(g.Name); n != "" {
			d.Genres = append(d.Genres, n)
		}
	}
	d.Director = firstName(it.ItemInfo.Director)
	d.Studio = firstName(it.ItemInfo.Maker)
	d.Label = firstName(it.ItemInfo.Label)
	d.Series = firstName(it.ItemInfo.Series)
	d.PreviewImages = append(d.PreviewImages, it.SampleImageURL.SampleS.Image...)

	d.Normalize()
	return d, nil
}

func firstName(pairs []namePair) string {
	if len(pairs) == 0 {
		return ""
	}
	return strings.TrimSpace(pairs[0].Name)
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

// rawFloat 解析可能带引号的 JSON 数值。
func rawFloat(raw json.RawMessage) float32 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0
	}
	return float32(v)
}

func rawInt(raw json.RawMessage) int {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
