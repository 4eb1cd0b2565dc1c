package parser

import (
	"regexp"
	"strings"

	"ikuuu_checkin/internal/model"
)

// UsageFamily 标记流量数据来自哪一组正则。
type UsageFamily string

const (
	FamilyCombined UsageFamily = "combined"
	FamilyFallback UsageFamily = "fallback"
	FamilyNone     UsageFamily = "none"
)

const (
	numberPat = `(\d+(?:\.\d+)?)`
	unitPat   = `([BKMG]B?)`
	// 数值和单位之间可能隔着 </span>
	gapPat = `\s*(?:</span>)?\s*`

	remainingPat = `剩余流量[\s\S]*?<span class="counter">` + numberPat + `</span>\s*` + unitPat
	todayCNPat   = `今日已用[\s\S]*?<span class="counter">` + numberPat + gapPat + unitPat
	todayENPat   = `Used Today\s*</span>\s*<span class="counter">` + numberPat + gapPat + unitPat
)

var (
	combinedRe  = regexp.MustCompile(remainingPat + `[\s\S]*?` + todayCNPat)
	remainingRe = regexp.MustCompile(remainingPat)
	todayRes    = []*regexp.Regexp{
		regexp.MustCompile(todayCNPat),
		regexp.MustCompile(todayENPat),
	}
)

// ParseUsage 从用户页 HTML 中提取今日已用和剩余流量。
// 先尝试组合匹配，失败后逐字段独立匹配，匹配不到的字段为 N/A。
func ParseUsage(html string) (model.UsageSnapshot, UsageFamily) {
	if m := combinedRe.FindStringSubmatch(html); m != nil {
		return model.UsageSnapshot{
			Remaining: NormalizeUnit(m[1], m[2]),
			UsedToday: NormalizeUnit(m[3], m[4]),
		}, FamilyCombined
	}

	out := model.EmptyUsage()
	found := false
	for _, re := range todayRes {
		if m := re.FindStringSubmatch(html); m != nil {
			out.UsedToday = NormalizeUnit(m[1], m[2])
			found = true
			break
		}
	}
	if m := remainingRe.FindStringSubmatch(html); m != nil {
		out.Remaining = NormalizeUnit(m[1], m[2])
		found = true
	}
	if !found {
		return out, FamilyNone
	}
	return out, FamilyFallback
}

// NormalizeUnit 拼接数值与单位，单位统一大写并以 B 结尾（K -> KB）。
func NormalizeUnit(value, unit string) string {
	u := strings.ToUpper(strings.TrimSpace(unit))
	u = strings.TrimSuffix(u, "B")
	return strings.TrimSpace(value) + u + "B"
}
