package domain

// MagnetInfo 是一条磁力链接及其尽力而为的元数据。
//
// 约束：
// - URL 是唯一键：聚合后的列表里不允许出现两条相同 URL 的记录
// - Seeders/Leechers/Downloads 零值表示“未知或为零”（排序时未知按 0 处理）
// - AvgBitrateMbps 由体积+时长推导，只是提示值，不是权威数据
type MagnetInfo struct {
	URL            string  `json:"url"`
	Name           string  `json:"name,omitempty"`
	Size           string  `json:"size,omitempty"`
	Date           string  `json:"date,omitempty"`
	Seeders        int     `json:"seeders,omitempty"`
	Leechers       int     `json:"leechers,omitempty"`
	Downloads      int     `json:"downloads,omitempty"`
	Resolution     string  `json:"resolution,omitempty"`
	Codec          string  `json:"codec,omitempty"`
	AvgBitrateMbps float32 `json:"avg_bitrate_mbps,omitempty"`
}
