package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/auv-sh/avgo/internal/domain"
)

// emitJSON 把结果以缩进 JSON 打到 stdout（日志走 stderr，互不污染）。
func emitJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderDetail(w io.Writer, d domain.Detail) {
	fmt.Fprintf(w, "番号    %s\n", d.Code)
	fmt.Fprintf(w, "标题    %s\n", d.Title)
	if len(d.Actors) > 0 {
		fmt.Fprintf(w, "演员    %s\n", strings.Join(d.Actors, "、"))
	}
	if d.ReleaseDate != "" {
		fmt.Fprintf(w, "发行    %s\n", d.ReleaseDate)
	}
	if d.DurationM > 0 {
		fmt.Fprintf(w, "时长    %d 分钟\n", d.DurationM)
	}
	if d.Director != "" {
		fmt.Fprintf(w, "导演    %s\n", d.Director)
	}
	if d.Studio != "" {
		fmt.Fprintf(w, "片商    %s\n", d.Studio)
	}
	if d.Label != "" {
		fmt.Fprintf(w, "厂牌    %s\n", d.Label)
	}
	if d.Series != "" {
		fmt.Fprintf(w, "系列    %s\n", d.Series)
	}
	if d.Rating > 0 {
		fmt.Fprintf(w, "评分    %.2f\n", d.Rating)
	}
	if len(d.Genres) > 0 {
		fmt.Fprintf(w, "类别    %s\n", strings.Join(d.Genres, "、"))
	}
	if d.CoverURL != "" {
		fmt.Fprintf(w, "封面    %s\n", d.CoverURL)
	}
	if d.Plot != "" {
		fmt.Fprintf(w, "简介    %s\n", d.Plot)
	}
	if n := len(d.MagnetInfos); n > 0 {
		fmt.Fprintf(w, "磁力    %d 条（用 get 查看）\n", n)
	}
}

// renderMagnets 一行一条磁力，前缀做种数等注记，方便肉眼挑选与管道截取。
func renderMagnets(w io.Writer, ranked []domain.MagnetInfo, bare []string) {
	seen := make(map[string]struct{}, len(ranked))
	for _, m := range ranked {
		seen[m.URL] = struct{}{}
		var notes []string
		if m.Seeders > 0 {
			notes = append(notes, fmt.Sprintf("做种 %d", m.Seeders))
		}
		if m.Size != "" {
			notes = append(notes, m.Size)
		}
		if m.Resolution != "" {
			notes = append(notes, m.Resolution)
		}
		if m.AvgBitrateMbps > 0 {
			notes = append(notes, fmt.Sprintf("%.1f Mbps", m.AvgBitrateMbps))
		}
		if len(notes) > 0 {
			fmt.Fprintf(w, "# %s\n", strings.Join(notes, " / "))
		}
		fmt.Fprintln(w, m.URL)
	}
	// 只有裸 URI 的磁力（来源没给元数据）排在最后。
	for _, u := range bare {
		if _, dup := seen[u]; dup {
			continue
		}
		fmt.Fprintln(w, u)
	}
}

func renderItems(w io.Writer, items []domain.Item) {
	for _, it := range items {
		fmt.Fprintf(w, "%-12s %s\n", it.Code, it.Title)
	}
}

func renderActors(w io.Writer, ranks []domain.ActorRank, page, total int) {
	for i, r := range ranks {
		fmt.Fprintf(w, "%4d  %s\n", i+1, r.Name)
	}
	if total > 0 {
		fmt.Fprintf(w, "-- 第 %d 页 / 估算总数 %d --\n", page, total)
	}
}
