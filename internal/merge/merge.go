package merge

import (
	"sort"

	"github.com/auv-sh/avgo/internal/domain"
)

// Fill 按字段合并两条部分记录：primary 有值（标量非零/列表非空）则保留，
// 否则取 secondary 的值。磁力列表是唯一例外——按 URL 去重取并集，
// 因为多个来源可能各自贡献互不重叠的有效子集。
//
// 约束：
// - 非交换：调用方指定的 primary 在冲突时恒胜（表达来源信任顺序）
// - 可从左到右折叠到两个以上来源
func Fill(primary, secondary domain.Detail) domain.Detail {
	out := primary

	if out.Code == "" {
		out.Code = secondary.Code
	}
	if out.Title == "" {
		out.Title = secondary.Title
	}
	if out.ReleaseDate == "" {
		out.ReleaseDate = secondary.ReleaseDate
	}
	if out.CoverURL == "" {
		out.CoverURL = secondary.CoverURL
	}
	if out.Plot == "" {
		out.Plot = secondary.Plot
	}
	if out.DurationM == 0 {
		out.DurationM = secondary.DurationM
	}
	if out.Director == "" {
		out.Director = secondary.Director
	}
	if out.Studio == "" {
		out.Studio = secondary.Studio
	}
	if out.Label == "" {
		out.Label = secondary.Label
	}
	if out.Series == "" {
		out.Series = secondary.Series
	}
	if out.Rating == 0 {
		out.Rating = secondary.Rating
	}
	if len(out.Actors) == 0 {
		out.Actors = secondary.Actors
	}
	if len(out.Genres) == 0 {
		out.Genres = secondary.Genres
	}
	if len(out.PreviewImages) == 0 {
		out.PreviewImages = secondary.PreviewImages
	}

	out.MagnetInfos = AggregateMagnets(out.MagnetInfos, secondary.MagnetInfos)
	out.Magnets = AggregateURIs(out.Magnets, secondary.Magnets)
	return out
}

// AggregateMagnets 把 incoming 中 URL 尚未出现的记录追加到 existing 之后。
// 不改变 existing 的既有顺序（聚合序=插入序；排序是另一回事，见 RankBySeeders）。
func AggregateMagnets(existing, incoming []domain.MagnetInfo) []domain.MagnetInfo {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		seen[m.URL] = struct{}{}
	}
	out := existing
	for _, m := range incoming {
		if _, ok := seen[m.URL]; ok {
			continue
		}
		seen[m.URL] = struct{}{}
		out = append(out, m)
	}
	return out
}

// AggregateURIs 与 AggregateMagnets 相同，只是针对裸 magnet URI 列表。
func AggregateURIs(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, u := range existing {
		seen[u] = struct{}{}
	}
	out := existing
	for _, u := range incoming {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// RankBySeeders 产出按做种数降序的展示顺序（未知按 0，稳定排序保持并列项的相对顺序）。
// 纯视图：不修改输入，不改变元素集合。
func RankBySeeders(in []domain.MagnetInfo) []domain.MagnetInfo {
	out := make([]domain.MagnetInfo, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Seeders > out[j].Seeders
	})
	return out
}
