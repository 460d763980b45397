package sukebei

import (
	"testing"

	providerx "github.com/auv-sh/avgo/internal/provider"
)

const listFixture = `<html><body>
<table class="table torrent-list">
<thead><tr><th>Category</th><th>Name</th><th></th><th>Size</th><th>Date</th><th>S</th><th>L</th><th>D</th></tr></thead>
<tbody>
<tr class="default">
  <td><a href="/?c=2_2"><img alt="cat"></a></td>
  <td colspan="2"><a href="/view/100#comments" class="comments">3</a><a href="/view/100" title="ABC-123 [1080p] [x264] 120min">ABC-123 [1080p] [x264] 120min</a></td>
  <td class="text-center"><a href="/download/100.torrent"><i></i></a><a href="magnet:?xt=urn:btih:aaa&dn=ABC-123">m</a></td>
  <td class="text-center">2.3 GiB</td>
  <td class="text-center">2023-05-02 12:00</td>
  <td class="text-center">15</td>
  <td class="text-center">3</td>
  <td class="text-center">120</td>
</tr>
<tr class="default">
  <td><a href="/?c=2_2"><img alt="cat"></a></td>
  <td colspan="2"><a href="/view/101" title="ABC-123 720p">ABC-123 720p</a></td>
  <td class="text-center"><a href="magnet:?xt=urn:btih:bbb&dn=ABC-123">m</a></td>
  <td class="text-center">700 MiB</td>
  <td class="text-center">2023-05-01 09:00</td>
  <td class="text-center">40</td>
  <td class="text-center">1</td>
  <td class="text-center">300</td>
</tr>
<tr class="default">
  <td><a href="/?c=2_2"><img alt="cat"></a></td>
  <td colspan="2"><a href="/view/102" title="DEF-456 别的片子">DEF-456 别的片子</a></td>
  <td class="text-center"><a href="magnet:?xt=urn:btih:ccc&dn=DEF-456">m</a></td>
  <td class="text-center">1.0 GiB</td>
  <td class="text-center">2023-04-30 08:00</td>
  <td class="text-center">7</td>
  <td class="text-center">0</td>
  <td class="text-center">55</td>
</tr>
</tbody>
</table>
</body></html>`

func TestParseRows(t *testing.T) {
	rows := ParseRows([]byte(listFixture))
	if len(rows) != 3 {
		t.Fatalf("期望 3 行，实际=%d", len(rows))
	}
	r := rows[0]
	if r.Title != "ABC-123 [1080p] [x264] 120min" {
		t.Fatalf("期望取标题链接（最后一个 a），实际=%q", r.Title)
	}
	if r.Magnet != "magnet:?xt=urn:btih:aaa&dn=ABC-123" {
		t.Fatalf("期望磁力链接，实际=%q", r.Magnet)
	}
	if r.Size != "2.3 GiB" || r.Date != "2023-05-02 12:00" {
		t.Fatalf("期望体积/日期，实际=%+v", r)
	}
	if r.Seeders != 15 || r.Leechers != 3 || r.Downloads != 120 {
		t.Fatalf("期望做种/下载中/完成数，实际=%+v", r)
	}
}

func TestParseItems(t *testing.T) {
	items := ParseItems([]byte(listFixture))
	if len(items) != 2 {
		t.Fatalf("期望按番号去重后 2 条，实际=%v", items)
	}
	if items[0].Code != "ABC-123" || items[1].Code != "DEF-456" {
		t.Fatalf("期望保持行序，实际=%v", items)
	}
}

func TestParseDetail(t *testing.T) {
	d, err := ParseDetail("ABC-123", []byte(listFixture))
	if err != nil {
		t.Fatalf("期望解析成功，实际错误：%v", err)
	}
	if d.Code != "ABC-123" {
		t.Fatalf("期望 code=ABC-123，实际=%q", d.Code)
	}
	if len(d.MagnetInfos) != 2 || len(d.Magnets) != 2 {
		t.Fatalf("期望聚合两条磁力，实际 infos=%v magnets=%v", d.MagnetInfos, d.Magnets)
	}

	m := d.MagnetInfos[0]
	if m.Resolution != "1080p" {
		t.Fatalf("期望从标题提取 1080p，实际=%q", m.Resolution)
	}
	if m.Codec != "x264" {
		t.Fatalf("期望从标题提取 x264，实际=%q", m.Codec)
	}
	if m.Seeders != 15 {
		t.Fatalf("期望做种数 15，实际=%d", m.Seeders)
	}
	// 2.3 GiB / 120 分钟 ≈ 2.7 Mbps
	if m.AvgBitrateMbps < 2.0 || m.AvgBitrateMbps > 3.5 {
		t.Fatalf("期望码率在 2-3.5 Mbps 区间，实际=%v", m.AvgBitrateMbps)
	}
	// 第二行标题没有时长记号：码率必须保持未知。
	if d.MagnetInfos[1].AvgBitrateMbps != 0 {
		t.Fatalf("期望缺时长时码率为 0，实际=%v", d.MagnetInfos[1].AvgBitrateMbps)
	}

	if d.Title != "ABC-123 [1080p] [x264] 120min" {
		t.Fatalf("期望标题取首个匹配行，实际=%q", d.Title)
	}
}

func TestParseDetailNotFound(t *testing.T) {
	_, err := ParseDetail("ZZZ-999", []byte(listFixture))
	if !providerx.IsNotFound(err) {
		t.Fatalf("期望 NotFound，实际=%v", err)
	}
}
