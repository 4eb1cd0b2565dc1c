// Package notify 渲染运行报告并推送到已配置的渠道，各渠道互不影响。
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/logbus"
	"ikuuu_checkin/internal/model"
)

const userAgent = "ikuuu-checkin/1.0"

type Message struct {
	Title    string
	Markdown string
	Report   model.RunReport
}

// Channel 是单个推送渠道，失败时返回 error，由 Dispatcher 负责兜底。
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

type DeliveryResult struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}

type Dispatcher struct {
	title    string
	channels []Channel
	bus      *logbus.Bus
}

// NewDispatcher 根据配置创建渠道；未设置或值为 "1" 的渠道不会被创建。
func NewDispatcher(cfg config.NotifyConfig, bus *logbus.Bus) *Dispatcher {
	client := newHTTPClient(cfg.Timeout())
	var channels []Channel
	if config.ChannelEnabled(cfg.ServerChan.Key) {
		channels = append(channels, NewServerChan(client, cfg.ServerChan.BaseURL, cfg.ServerChan.Key))
	}
	if config.ChannelEnabled(cfg.PushPlus.Token) {
		channels = append(channels, NewPushPlus(client, cfg.PushPlus.URL, cfg.PushPlus.Token))
	}
	if config.ChannelEnabled(cfg.Email.Address) && config.ChannelEnabled(cfg.Email.AuthCode) {
		channels = append(channels, NewEmail(cfg.Email))
	}
	return NewDispatcherWithChannels(cfg.Title, bus, channels...)
}

func NewDispatcherWithChannels(title string, bus *logbus.Bus, channels ...Channel) *Dispatcher {
	return &Dispatcher{title: title, channels: channels, bus: bus}
}

func (d *Dispatcher) ChannelNames() []string {
	out := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		out = append(out, ch.Name())
	}
	return out
}

// Dispatch 依次推送到每个渠道，单个渠道失败只记录日志，不会中断其他渠道。
func (d *Dispatcher) Dispatch(ctx context.Context, report model.RunReport) []DeliveryResult {
	msg := Message{
		Title:    d.title,
		Markdown: BuildReport(report, d.title),
		Report:   report,
	}
	if len(d.channels) == 0 {
		d.bus.Log("info", "未配置推送渠道，跳过通知", map[string]any{"runId": report.RunID})
		return nil
	}

	results := make([]DeliveryResult, 0, len(d.channels))
	for _, ch := range d.channels {
		res := DeliveryResult{Channel: ch.Name()}
		if err := deliver(ctx, ch, msg); err != nil {
			res.Error = err.Error()
			d.bus.Log("warn", "推送失败", map[string]any{
				"channel": ch.Name(),
				"error":   err.Error(),
				"runId":   report.RunID,
			})
		} else {
			res.Sent = true
			d.bus.Log("info", "推送成功", map[string]any{
				"channel": ch.Name(),
				"runId":   report.RunID,
			})
		}
		results = append(results, res)
	}
	return results
}

func deliver(ctx context.Context, ch Channel, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("发生 panic：%v", r)
		}
	}()
	return ch.Send(ctx, msg)
}

func newHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)
}
