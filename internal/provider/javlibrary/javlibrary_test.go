package javlibrary

import (
	"testing"
)

const detailFixture = `<html><body>
<div id="video_title"><h3 class="post-title text"><a href="./?v=javme4pime">ABC-123 素敵なタイトル</a></h3></div>
<img id="video_jacket_img" src="//pics.example.com/cover/abc123pl.jpg">
<div id="video_info">
  <div id="video_id" class="item"><table><tr><td class="header">識別碼:</td><td class="text">ABC-123</td></tr></table></div>
  <div id="video_date" class="item"><table><tr><td class="header">發行日期:</td><td class="text">2023-05-01</td></tr></table></div>
  <div id="video_length" class="item"><table><tr><td class="header">長度:</td><td><span class="text">120</span> 分鐘</td></tr></table></div>
  <div id="video_director" class="item"><table><tr><td class="header">導演:</td><td class="text"><span class="director"><a href="vl_director.php?d=x">山田太郎</a></span></td></tr></table></div>
  <div id="video_maker" class="item"><table><tr><td class="header">製作商:</td><td class="text"><span class="maker"><a href="vl_maker.php?m=y">S1</a></span></td></tr></table></div>
  <div id="video_label" class="item"><table><tr><td class="header">發行商:</td><td class="text"><span class="label"><a href="vl_label.php?l=z">S1 LABEL</a></span></td></tr></table></div>
  <div id="video_series" class="item"><table><tr><td class="header">系列:</td><td class="text"><span class="series"><a href="vl_series.php?s=w">絶対系列</a></span></td></tr></table></div>
  <div id="video_review" class="item"><table><tr><td class="header">使用者評價:</td><td class="text"><span class="score">(4.5)</span></td></tr></table></div>
  <div id="video_genres" class="item"><table><tr><td class="header">類別:</td><td class="text">
    <span class="genre"><a href="vl_genre.php?g=1">單體作品</a></span>
    <span class="genre"><a href="vl_genre.php?g=2">中出</a></span>
  </td></tr></table></div>
  <div id="video_cast" class="item"><table><tr><td class="header">演員:</td><td class="text">
    <span class="cast"><span class="star"><a href="vl_star.php?s=a">葵一咲</a></span></span>
    <span class="cast"><span class="star"><a href="vl_star.php?s=b">明里二葉</a></span></span>
  </td></tr></table></div>
</div>
</body></html>`

func TestParseDetail(t *testing.T) {
	d, err := ParseDetail("ABC-123", []byte(detailFixture), "https://www.javlibrary.com/en/?v=javme4pime")
	if err != nil {
		t.Fatalf("期望解析成功，实际错误：%v", err)
	}

	if d.Code != "ABC-123" {
		t.Fatalf("期望 code=ABC-123，实际=%q", d.Code)
	}
	if d.Title != "素敵なタイトル" {
		t.Fatalf("期望标题剥掉番号前缀，实际=%q", d.Title)
	}
	if d.ReleaseDate != "2023-05-01" {
		t.Fatalf("期望日期 2023-05-01，实际=%q", d.ReleaseDate)
	}
	if d.CoverURL != "https://pics.example.com/cover/abc123pl.jpg" {
		t.Fatalf("期望 // 开头的封面补全为 https，实际=%q", d.CoverURL)
	}
	if len(d.Actors) != 2 || d.Actors[0] != "葵一咲" || d.Actors[1] != "明里二葉" {
		t.Fatalf("期望两个演员，实际=%v", d.Actors)
	}
	if d.Director != "山田太郎" || d.Studio != "S1" || d.Label != "S1 LABEL" || d.Series != "絶対系列" {
		t.Fatalf("期望导演/片商/厂牌/系列齐全，实际=%+v", d)
	}
	if d.DurationM != 120 {
		t.Fatalf("期望时长 120，实际=%d", d.DurationM)
	}
	if d.Rating != 4.5 {
		t.Fatalf("期望评分 4.5，实际=%v", d.Rating)
	}
	if len(d.Genres) != 2 {
		t.Fatalf("期望两个类别，实际=%v", d.Genres)
	}
}

func TestParseDetailMissingTitle(t *testing.T) {
	if _, err := ParseDetail("ABC-123", []byte(`<html><body>拦截页</body></html>`), "u"); err == nil {
		t.Fatal("期望无标题报错，实际成功")
	}
	if _, err := ParseDetail("ABC-123", nil, "u"); err == nil {
		t.Fatal("期望空 html 报错，实际成功")
	}
}

func TestFindDetailHref(t *testing.T) {
	html := []byte(`<div class="videos"><div class="video"><a href="./?v=javme4pime" title="ABC-123"></a></div></div>`)
	href, ok := findDetailHref(html)
	if !ok || href != "./?v=javme4pime" {
		t.Fatalf("期望找到结果链接，实际=%q ok=%v", href, ok)
	}
}

func TestIsDetailPage(t *testing.T) {
	if !isDetailPage([]byte(detailFixture)) {
		t.Fatal("期望详情页被识别")
	}
	if isDetailPage([]byte(`<div class="videos"></div>`)) {
		t.Fatal("期望搜索页不被识别为详情页")
	}
}
