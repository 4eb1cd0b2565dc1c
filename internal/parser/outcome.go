// Package parser 从站点返回的原始内容中提取结构化结果，不做任何 I/O。
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"ikuuu_checkin/internal/model"
)

const (
	MsgUnparseable   = "接口返回数据异常"
	MsgUnknownReason = "未知错误"
)

var ErrUnparseable = errors.New("response is not valid json")

// APIResult 对应站点接口的 {"ret": 1, "msg": "..."}。
type APIResult struct {
	Ret    int
	HasRet bool
	Msg    string
}

var utf8BOM = []byte("\xef\xbb\xbf")

type rawResult struct {
	Ret json.RawMessage `json:"ret"`
	Msg json.RawMessage `json:"msg"`
}

func DecodeResult(body []byte) (APIResult, error) {
	body = bytes.TrimSpace(bytes.TrimPrefix(bytes.TrimSpace(body), utf8BOM))
	if len(body) == 0 || body[0] != '{' {
		return APIResult{}, ErrUnparseable
	}
	var raw rawResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return APIResult{}, ErrUnparseable
	}
	var out APIResult
	out.Ret, out.HasRet = parseRet(raw.Ret)
	out.Msg = parseMsg(raw.Msg)
	return out, nil
}

func parseRet(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), f == float64(int(f))
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func parseMsg(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// Outcome 把接口返回体转换为操作结果：ret == 1 为成功，其余为被拒绝。
// okFallback 在成功但没有 msg 时使用。
func Outcome(body []byte, okFallback string) model.Outcome {
	res, err := DecodeResult(body)
	if err != nil {
		return model.Failed(model.OutcomeUnparseable, MsgUnparseable)
	}
	if res.HasRet && res.Ret == 1 {
		msg := res.Msg
		if msg == "" {
			msg = okFallback
		}
		return model.OK(msg)
	}
	msg := res.Msg
	if msg == "" {
		msg = MsgUnknownReason
	}
	return model.Failed(model.OutcomeRejected, msg)
}

var alreadyCheckedInMarkers = []string{
	"已经签到",
	"签到过",
	"already checked in",
	"already check in",
}

// IsAlreadyCheckedIn 判断签到失败文案是否表示"今日已签到"。
func IsAlreadyCheckedIn(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range alreadyCheckedInMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
