package javdb

import (
	"strings"
	"testing"
)

const detailFixture = `<!DOCTYPE html>
<html>
<head>
<title>ABC-123 素敵なタイトル | JavDB</title>
<meta property="og:image" content="https://img.example.com/og/abc-123.jpg">
</head>
<body>
<div class="video-detail">
  <h2 class="title">
    <strong class="current-title">精選翻譯標題</strong>
    <span class="origin-title">素敵なタイトル</span>
  </h2>
  <div class="column-video-cover">
    <a data-fancybox="gallery" href="/covers/abc-123-full.jpg"><img src="/covers/abc-123-thumb.jpg"></a>
  </div>
  <nav class="movie-panel-info">
    <div class="panel-block"><strong>番號:</strong> <span class="value">ABC-123</span></div>
    <div class="panel-block"><strong>日期:</strong> <span class="value">2023-05-01</span></div>
    <div class="panel-block"><strong>時長:</strong> <span class="value">120 分鍾</span></div>
    <div class="panel-block"><strong>導演:</strong> <span class="value"><a href="/directors/d1">山田太郎</a></span></div>
    <div class="panel-block"><strong>片商:</strong> <span class="value"><a href="/makers/m1">S1</a></span></div>
    <div class="panel-block"><strong>系列:</strong> <span class="value"><a href="/series/s1">絶対系列</a></span></div>
    <div class="panel-block"><strong>廠牌:</strong> <span class="value"><a href="/labels/l1">S1 LABEL</a></span></div>
    <div class="panel-block"><strong>評分:</strong> <span class="value">4.29分, 由652人評價</span></div>
    <div class="panel-block"><strong>類別:</strong> <span class="value"><a href="/tags?c=1">單體作品</a> <a href="/tags?c=2">中出</a></span></div>
    <div class="panel-block"><strong>演員:</strong> <span class="value"><a href="/actors/a1">葵一咲</a> <a href="/actors/a2">明里二葉</a></span></div>
  </nav>
  <div class="preview-images">
    <img src="/samples/abc-123-1.jpg">
    <img src="/samples/abc-123-2.jpg">
    <img src="/samples/abc-123-1.jpg">
  </div>
  <a href="magnet:?xt=urn:btih:0123456789abcdef&dn=ABC-123">magnet</a>
  <a href="magnet:?xt=urn:btih:0123456789abcdef&dn=ABC-123">same magnet</a>
</div>
</body>
</html>`

func TestParseDetail(t *testing.T) {
	d, err := ParseDetail("ABC-123", []byte(detailFixture), "https://javdb.com/v/abc123")
	if err != nil {
		t.Fatalf("期望解析成功，实际错误：%v", err)
	}

	if d.Code != "ABC-123" {
		t.Fatalf("期望 code=ABC-123，实际=%q", d.Code)
	}
	if d.Title != "素敵なタイトル" {
		t.Fatalf("期望原标题优先，实际=%q", d.Title)
	}
	if d.ReleaseDate != "2023-05-01" {
		t.Fatalf("期望日期 2023-05-01，实际=%q", d.ReleaseDate)
	}
	if d.DurationM != 120 {
		t.Fatalf("期望时长 120，实际=%d", d.DurationM)
	}
	if d.Director != "山田太郎" {
		t.Fatalf("期望导演 山田太郎，实际=%q", d.Director)
	}
	if d.Studio != "S1" {
		t.Fatalf("期望片商 S1，实际=%q", d.Studio)
	}
	if d.Series != "絶対系列" {
		t.Fatalf("期望系列 絶対系列，实际=%q", d.Series)
	}
	if d.Label != "S1 LABEL" {
		t.Fatalf("期望厂牌 S1 LABEL，实际=%q", d.Label)
	}
	if d.Rating != 4.29 {
		t.Fatalf("期望评分 4.29，实际=%v", d.Rating)
	}
	if len(d.Genres) != 2 || d.Genres[0] != "單體作品" || d.Genres[1] != "中出" {
		t.Fatalf("期望两个类别，实际=%v", d.Genres)
	}
	if len(d.Actors) != 2 || d.Actors[0] != "葵一咲" {
		t.Fatalf("期望两个演员，实际=%v", d.Actors)
	}
	if d.CoverURL != "https://javdb.com/covers/abc-123-full.jpg" {
		t.Fatalf("期望大图封面优先且补全为绝对 URL，实际=%q", d.CoverURL)
	}
	if len(d.PreviewImages) != 2 {
		t.Fatalf("期望预览图去重后 2 张，实际=%v", d.PreviewImages)
	}
	if !strings.HasPrefix(d.PreviewImages[0], "https://javdb.com/samples/") {
		t.Fatalf("期望预览图补全为绝对 URL，实际=%q", d.PreviewImages[0])
	}
	if len(d.Magnets) != 1 {
		t.Fatalf("期望磁力去重后 1 条，实际=%v", d.Magnets)
	}
	if len(d.MagnetInfos) != 1 || d.MagnetInfos[0].URL != d.Magnets[0] {
		t.Fatalf("期望 MagnetInfos 与 Magnets 一一对应，实际=%v", d.MagnetInfos)
	}
}

func TestParseDetailEmptyHTML(t *testing.T) {
	if _, err := ParseDetail("ABC-123", nil, "https://javdb.com/v/x"); err == nil {
		t.Fatal("期望空 html 报错，实际成功")
	}
}

func TestParseDetailLDJSONFallback(t *testing.T) {
	const fixture = `<html><head><title>DEF-456 标题</title></head><body>
<h2 class="title"><strong class="current-title">DEF-456 标题</strong></h2>
<script type="application/ld+json">
{"@type":"VideoObject","description":"这是一段足够长的剧情简介文本。","duration":"PT1H40M",
 "actor":[{"name":"演員甲"}],"image":["https://img.example.com/1.jpg"],
 "productionCompany":{"name":"廠商乙"}}
</script>
</body></html>`
	d, err := ParseDetail("DEF-456", []byte(fixture), "https://javdb.com/v/def456")
	if err != nil {
		t.Fatalf("期望解析成功，实际错误：%v", err)
	}
	if d.Plot != "这是一段足够长的剧情简介文本。" {
		t.Fatalf("期望 JSON-LD 补齐剧情，实际=%q", d.Plot)
	}
	if d.DurationM != 100 {
		t.Fatalf("期望 PT1H40M => 100 分钟，实际=%d", d.DurationM)
	}
	if len(d.Actors) != 1 || d.Actors[0] != "演員甲" {
		t.Fatalf("期望 JSON-LD 补齐演员，实际=%v", d.Actors)
	}
	if d.Studio != "廠商乙" {
		t.Fatalf("期望 JSON-LD 补齐片商，实际=%q", d.Studio)
	}
	if d.Code != "DEF-456" {
		t.Fatalf("期望从标题兜底出 code，实际=%q", d.Code)
	}
}

const itemsFixture = `<html><body>
<div class="movie-list">
  <div class="item"><a class="box" href="/v/x1"><div class="video-title"><strong>ABC-123</strong> 標題一</div></a></div>
  <div class="item"><a class="box" href="/v/x2"><div class="video-title"><strong>DEF-456</strong> 標題二</div></a></div>
  <div class="item"><a class="box" href="/v/x3"><div class="video-title">没有番号的卡片</div></a></div>
</div>
</body></html>`

func TestParseItems(t *testing.T) {
	items, err := ParseItems([]byte(itemsFixture))
	if err != nil {
		t.Fatalf("期望解析成功，实际错误：%v", err)
	}
	if len(items) != 2 {
		t.Fatalf("期望 2 条（无番号卡片被跳过），实际=%d", len(items))
	}
	if items[0].Code != "ABC-123" || items[1].Code != "DEF-456" {
		t.Fatalf("期望保持页面顺序，实际=%v", items)
	}
	if items[0].Title != "ABC-123 標題一" {
		t.Fatalf("期望标题保留整行文本，实际=%q", items[0].Title)
	}
}

const actorsFixture = `<html><body>
<div id="actors" class="actors">
  <div class="actor-box"><a title="葵一咲, Aoi Issa"><strong>葵一咲</strong></a></div>
  <div class="actor-box"><a><strong>三上六葉</strong></a></div>
  <div class="actor-box"><a title="白石七海"></a></div>
</div>
<nav class="pagination">
  <ul class="pagination-list">
    <li><a class="pagination-link">1</a></li>
    <li><a class="pagination-link">2</a></li>
    <li><a class="pagination-link">25</a></li>
  </ul>
</nav>
</body></html>`

func TestParseActors(t *testing.T) {
	ranks, totalPages := ParseActors([]byte(actorsFixture), 50)
	if len(ranks) != 3 {
		t.Fatalf("期望 3 个演员，实际=%v", ranks)
	}
	if ranks[0].Name != "葵一咲" || ranks[0].Hot != 50 {
		t.Fatalf("期望首位热度 50，实际=%+v", ranks[0])
	}
	if ranks[1].Hot != 49 {
		t.Fatalf("期望第二位热度 49，实际=%+v", ranks[1])
	}
	if ranks[2].Name != "白石七海" {
		t.Fatalf("期望 title 属性兜底取名（逗号前一段），实际=%+v", ranks[2])
	}
	if totalPages != 25 {
		t.Fatalf("期望总页数取分页控件最大值 25，实际=%d", totalPages)
	}
}

func TestHotFromOrder(t *testing.T) {
	if hotFromOrder(0, 50) != 50 {
		t.Fatalf("期望首位=perPage")
	}
	if hotFromOrder(60, 50) != 1 {
		t.Fatalf("期望热度下限为 1")
	}
}

func TestFindDetailHref(t *testing.T) {
	html := []byte(`<div class="movie-list"><div class="item"><a class="box" href="/v/abc"></a></div></div>`)
	href, ok := findDetailHref(html)
	if !ok || href != "/v/abc" {
		t.Fatalf("期望找到 /v/abc，实际=%q ok=%v", href, ok)
	}
	if _, ok := findDetailHref([]byte(`<div>什么都没有</div>`)); ok {
		t.Fatal("期望空页面找不到详情链接")
	}
}

func TestProviderName(t *testing.T) {
	var p Provider
	if p.Name() != "javdb" {
		t.Fatalf("期望 name=javdb，实际=%q", p.Name())
	}
}
