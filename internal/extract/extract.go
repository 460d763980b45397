package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/auv-sh/avgo/internal/domain"
)

// 本包是纯函数集合：输入文本，输出“可能存在”的字段。
//
// 约束：
// - 所有函数必须 total：找不到就返回零值，永不 panic / 永不返回 error
// - 每个字段内部是“按优先级排列的提取策略”，先命中先赢；
//   顺序本身编码了来源页面的真实差异，不要合并成单条“聪明”正则

// 候选 CODE：字母段 + 可选分隔符 + 数字段。
// 标题/查询里的 CODE 可能完全没有分隔符（如 ssis001），因此分隔符允许为空。
var (
	codeCandidateRE = regexp.MustCompile(`(?i)([a-z]{2,5})[-_ ]?([0-9]{2,5})`)
	codeAnchoredRE  = regexp.MustCompile(`(?i)^[a-z]{2,5}[-_ ]?[0-9]{2,5}`)
)

// Code 从任意文本中提取第一个 CODE 候选并规范化为 LETTERS-DIGITS 大写形态。
func Code(s string) (domain.Code, bool) {
	m := codeCandidateRE.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return domain.ParseCode(strings.ToUpper(m[1]) + "-" + m[2])
}

// LooksLikeCode 判断查询串本身是否就是一个 CODE（锚定开头）。
func LooksLikeCode(s string) bool {
	return codeAnchoredRE.MatchString(strings.TrimSpace(s))
}

var releaseDateRE = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// ReleaseDate 提取显式的 YYYY-MM-DD 日期串；找不到返回 ""。
// 来源页面里按标签定位到的日期由各 adapter 自行供给，这里只处理散落文本。
func ReleaseDate(s string) string {
	m := releaseDateRE.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

var (
	minuteTokenRE = regexp.MustCompile(`(\d{2,3})\s*(?:分钟|分鍾|分|min|MIN|Min)`)
	isoDurationRE = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?`)
)

// DurationMinutes 提取时长（分钟）。策略顺序：
// 1) 散落文本中的 “NN min / NN 分钟|分” 记号
// 2) ISO-8601 时长记号 PT[H]H[M]M（小时/分钟均可缺省，按 H*60+M 解释）
// 找不到返回 0。
func DurationMinutes(s string) int {
	if m := minuteTokenRE.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}
	return ISODurationMinutes(s)
}

// ISODurationMinutes 只解析 ISO-8601 的 PT 记号（JSON-LD 的 duration 字段用）。
func ISODurationMinutes(s string) int {
	m := isoDurationRE.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm
}

var (
	ratingAfterRE  = regexp.MustCompile(`(?:Rating|RATING|评分|評分|Score)\s*[:：]?\s*([0-9]+(?:\.[0-9]+)?)`)
	ratingBeforeRE = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?:Rating|评分|評分|Score|分)`)
)

// Rating 提取 “rating/评分/Score” 附近的数值；找不到返回 0。
func Rating(s string) float32 {
	for _, re := range []*regexp.Regexp{ratingAfterRE, ratingBeforeRE} {
		if m := re.FindStringSubmatch(s); m != nil {
			if v, err := strconv.ParseFloat(m[1], 32); err == nil {
				return float32(v)
			}
		}
	}
	return 0
}

var sizeRE = regexp.MustCompile(`(?i)([0-9]+(?:\.[0-9]+)?)\s*([KMGT]i?B)`)

// SizeToBytes 解析 “<数字><单位>” 体积串（KB..TB 及 KiB..TiB 变体），
// 一律按 1024 进制换算。返回换算后的字节数与大写单位。
func SizeToBytes(s string) (bytes uint64, unit string, ok bool) {
	m := sizeRE.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	unit = strings.ToUpper(m[2])
	var mult float64
	switch unit {
	case "KB", "KIB":
		mult = 1 << 10
	case "MB", "MIB":
		mult = 1 << 20
	case "GB", "GIB":
		mult = 1 << 30
	case "TB", "TIB":
		mult = 1 << 40
	default:
		return 0, "", false
	}
	return uint64(num * mult), unit, true
}

// AvgBitrateMbps 由体积与时长推导平均码率（Mbps）。
// 两个输入都已知时才有意义；任一缺失时返回 0。
func AvgBitrateMbps(bytes uint64, minutes int) float32 {
	if bytes == 0 || minutes <= 0 {
		return 0
	}
	bits := float64(bytes) * 8
	sec := float64(minutes) * 60
	return float32(bits / sec / 1_000_000)
}

var (
	resolutionRE = regexp.MustCompile(`(\d{3,4}p|\d{3,4}[xX]\d{3,4})`)
	codecRE      = regexp.MustCompile(`(H\.264|H\.265|AVC|HEVC|x264|x265)`)
)

// Resolution 从种子标题中提取分辨率提示（1080p / 1920x1080）。
func Resolution(s string) string {
	m := resolutionRE.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// Codec 从种子标题中提取编码提示。
func Codec(s string) string {
	m := codecRE.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

var uncensoredKeywords = []string{
	"uncensored",
	"無修正",
	"无修正",
	"無碼",
	"无码",
	"無修正流出",
	"無碼流出",
	"无码流出",
}

// LooksUncensored 基于标题/标签的启发式无码判断（仅用于呈现层过滤）。
func LooksUncensored(s string) bool {
	lower := strings.ToLower(s)
	for _, k := range uncensoredKeywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
