package utils

import "strings"

// MaskEmail 保留邮箱用户名首尾各一个字符，其余用 * 代替，域名保持不变。
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	name, domain, ok := strings.Cut(email, "@")
	if !ok {
		return maskMiddle(email)
	}
	return maskMiddle(name) + "@" + domain
}

func maskMiddle(s string) string {
	r := []rune(s)
	switch len(r) {
	case 0:
		return ""
	case 1, 2:
		return string(r[0]) + strings.Repeat("*", len(r)-1)
	default:
		return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
	}
}
