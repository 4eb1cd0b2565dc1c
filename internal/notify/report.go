package notify

import (
	"strings"

	"ikuuu_checkin/internal/model"
)

func statusIcon(status model.RunStatus) string {
	if status == model.StatusSuccess {
		return "✅"
	}
	return "❌"
}

// StatusTitle 是 Server酱 / 邮件使用的短标题。
func StatusTitle(status model.RunStatus) string {
	if status == model.StatusSuccess {
		return "✅ 签到成功"
	}
	return "❌ 签到失败"
}

// BuildReport 把运行报告渲染为 markdown，相同输入总是得到相同输出。
func BuildReport(r model.RunReport, title string) string {
	lines := []string{
		"## " + statusIcon(r.Status) + " " + title,
		"**🕒 执行时间**: " + r.Timestamp,
		"**📧 用户账户**: `" + r.Account + "`",
		"---",
	}
	for _, step := range r.Steps {
		lines = append(lines, "- "+step)
	}
	if r.Usage != nil {
		lines = append(lines,
			"---",
			"**📊 流量统计**",
			"- 今日已用: `"+r.Usage.UsedToday+"`",
			"- 剩余流量: `"+r.Usage.Remaining+"`",
		)
	}
	return strings.Join(lines, "\n")
}
