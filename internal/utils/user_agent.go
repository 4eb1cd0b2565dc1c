package utils

import "strings"

const defaultDesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36"

// DefaultUserAgent 返回默认的桌面浏览器 UA。
func DefaultUserAgent() string {
	return defaultDesktopUserAgent
}

// NormalizeUserAgent 去掉首尾空白；为空或明显不是浏览器 UA 时返回默认 UA。
func NormalizeUserAgent(ua string) string {
	v := strings.TrimSpace(ua)
	if v == "" {
		return defaultDesktopUserAgent
	}
	if looksLikeBrowserUA(v) {
		return v
	}
	return defaultDesktopUserAgent
}

func looksLikeBrowserUA(ua string) bool {
	s := strings.ToLower(ua)
	if !strings.HasPrefix(s, "mozilla/") {
		return false
	}
	return strings.Contains(s, "applewebkit") || strings.Contains(s, "gecko") || strings.Contains(s, "chrome")
}
