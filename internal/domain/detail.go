package domain

// Detail 是一个 CODE 的结构化条目。单一来源产出时它是“部分记录”，
// 经编排层逐来源合并后成为最终结果。
//
// 约束：
// - Code 必须已规范化；Title 之外的标量字段零值表示“未知”
// - 列表字段 len==0 与“未知”等价；对外序列化时不允许为 null（见 Normalize）
type Detail struct {
	Code          Code         `json:"code"`
	Title         string       `json:"title"`
	Actors        []string     `json:"actor_names"`
	ReleaseDate   string       `json:"release_date,omitempty"`
	CoverURL      string       `json:"cover_url,omitempty"`
	Plot          string       `json:"plot,omitempty"`
	DurationM     int          `json:"duration_minutes,omitempty"`
	Director      string       `json:"director,omitempty"`
	Studio        string       `json:"studio,omitempty"`
	Label         string       `json:"label,omitempty"`
	Series        string       `json:"series,omitempty"`
	Genres        []string     `json:"genres"`
	Rating        float32      `json:"rating,omitempty"`
	PreviewImages []string     `json:"preview_images"`
	MagnetInfos   []MagnetInfo `json:"magnet_infos"`
	Magnets       []string     `json:"magnets"`
}

// Normalize 把所有 nil 列表替换为空切片，保证 JSON 输出契约（列表不为 null）。
func (d *Detail) Normalize() {
	if d.Actors == nil {
		d.Actors = []string{}
	}
	if d.Genres == nil {
		d.Genres = []string{}
	}
	if d.PreviewImages == nil {
		d.PreviewImages = []string{}
	}
	if d.MagnetInfos == nil {
		d.MagnetInfos = []MagnetInfo{}
	}
	if d.Magnets == nil {
		d.Magnets = []string{}
	}
}

// Item 是列表类操作（搜索/演员作品/最新榜）的最小条目。
type Item struct {
	Code  Code   `json:"code"`
	Title string `json:"title"`
}

// ActorRank 是演员热度榜的条目。
// Hot 由来源页面的呈现顺序推导（来源不暴露显式热度指标时），
// 因此仅在同一次抓取内可比，不具备跨时间含义。
type ActorRank struct {
	Name string `json:"name"`
	Hot  int    `json:"hot"`
}
