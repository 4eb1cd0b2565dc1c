package model

// NA 是流量字段无法解析时的占位值。
const NA = "N/A"

type UsageSnapshot struct {
	UsedToday string `json:"usedToday"`
	Remaining string `json:"remaining"`
}

func EmptyUsage() UsageSnapshot {
	return UsageSnapshot{UsedToday: NA, Remaining: NA}
}
