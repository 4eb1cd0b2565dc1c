package model

// OutcomeKind 区分远端操作的结果类型，失败原因由它结构化传递，不从文案反推。
type OutcomeKind string

const (
	OutcomeOK               OutcomeKind = "ok"
	OutcomeAlreadyCheckedIn OutcomeKind = "already_checked_in"
	OutcomeRejected         OutcomeKind = "rejected"
	OutcomeUnparseable      OutcomeKind = "unparseable"
	OutcomeNetwork          OutcomeKind = "network"
)

type Outcome struct {
	Succeeded bool        `json:"succeeded"`
	Kind      OutcomeKind `json:"kind"`
	Message   string      `json:"message,omitempty"`
}

func OK(msg string) Outcome {
	return Outcome{Succeeded: true, Kind: OutcomeOK, Message: msg}
}

func Failed(kind OutcomeKind, msg string) Outcome {
	return Outcome{Succeeded: false, Kind: kind, Message: msg}
}

// Informational 为 true 时表示虽未成功但不算硬失败（例如今日已签到）。
func (o Outcome) Informational() bool {
	return o.Kind == OutcomeAlreadyCheckedIn
}
