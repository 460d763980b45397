package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// 环境变量名（固定契约，.env 文件与进程环境等效）。
const (
	EnvHTTPProxy      = "AV_HTTP_PROXY"
	EnvJavDBBase      = "AV_JAVDB_BASE"
	EnvJavDBCookie    = "AV_JAVDB_COOKIE"
	EnvUseDMM         = "AV_USE_DMM"
	EnvDMMAPIID       = "DMM_API_ID"
	EnvDMMAffiliateID = "DMM_AFFILIATE_ID"
)

// FileConfig 对应可选的 av.json。所有字段都可缺省；
// 同名设置的环境变量优先于文件。
type FileConfig struct {
	Proxy          *ProxyConfig `json:"proxy"`
	JavDBBaseURL   string       `json:"javdb_base_url"`
	JavDBCookie    string       `json:"javdb_cookie"`
	UseDMM         *bool        `json:"use_dmm"`
	DMMAPIID       string       `json:"dmm_api_id"`
	DMMAffiliateID string       `json:"dmm_affiliate_id"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// Effective 是合并并做最小规范化后的最终配置
//（实现层直接消费，不再做二次默认/优先级判断）。
// 诊断开关（--debug）只影响日志级别，由 CLI 层直接消费，不进配置。
type Effective struct {
	ProxyURL string

	// JavDBBaseURL 允许在默认域名不可达/被阻断时切换到可用镜像（可选）。
	JavDBBaseURL string
	// JavDBCookie 原样附在主源请求上，用于带年龄确认/登录态的会话（可选）。
	JavDBCookie string

	// UseDMM 为 true 且凭证齐全时，商业目录才进入查询链路。
	UseDMM         bool
	DMMAPIID       string
	DMMAffiliateID string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 组装最终配置。
//
// 发现规则（固定）：
// 1) <cwd>/.env 存在则先加载进环境（不覆盖已有环境变量）
// 2) <cwd>/av.json 存在则读取（可选，不存在不算错误）
//
// 覆盖优先级（固定）：环境变量 > av.json > 内置默认。
func LoadEffective(cwd string) (Effective, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	// godotenv 不覆盖已存在的环境变量，正好符合优先级约定。
	_ = godotenv.Load(filepath.Join(cwdAbs, ".env"))

	cfgPath := filepath.Join(cwdAbs, "av.json")
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	return mergeEnv(fc, cfgPath)
}

func mergeEnv(fc FileConfig, cfgPath string) (Effective, error) {
	eff := Effective{}

	proxyURL := strings.TrimSpace(os.Getenv(EnvHTTPProxy))
	if proxyURL == "" && fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("代理 URL 无效：%q", proxyURL)}
		}
	}
	eff.ProxyURL = proxyURL

	base := strings.TrimSpace(os.Getenv(EnvJavDBBase))
	if base == "" {
		base = strings.TrimSpace(fc.JavDBBaseURL)
	}
	if base != "" {
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("镜像 URL 无效：%q", base)}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return Effective{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("镜像 URL 必须是 http/https：%q", base)}
		}
	}
	eff.JavDBBaseURL = base

	eff.JavDBCookie = strings.TrimSpace(os.Getenv(EnvJavDBCookie))
	if eff.JavDBCookie == "" {
		eff.JavDBCookie = strings.TrimSpace(fc.JavDBCookie)
	}

	if v, set := os.LookupEnv(EnvUseDMM); set {
		eff.UseDMM = isTruthy(v)
	} else if fc.UseDMM != nil {
		eff.UseDMM = *fc.UseDMM
	}

	eff.DMMAPIID = strings.TrimSpace(os.Getenv(EnvDMMAPIID))
	if eff.DMMAPIID == "" {
		eff.DMMAPIID = strings.TrimSpace(fc.DMMAPIID)
	}
	eff.DMMAffiliateID = strings.TrimSpace(os.Getenv(EnvDMMAffiliateID))
	if eff.DMMAffiliateID == "" {
		eff.DMMAffiliateID = strings.TrimSpace(fc.DMMAffiliateID)
	}

	return eff, nil
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
