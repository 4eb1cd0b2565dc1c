package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

type PushPlus struct {
	client *resty.Client
	url    string
	token  string
}

func NewPushPlus(client *resty.Client, url, token string) *PushPlus {
	return &PushPlus{
		client: client,
		url:    url,
		token:  strings.TrimSpace(token),
	}
}

func (p *PushPlus) Name() string { return "pushplus" }

type pushPlusReq struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type pushPlusResp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send 提交 markdown 报告，只有返回 code == 200 才算推送成功。
func (p *PushPlus) Send(ctx context.Context, msg Message) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(pushPlusReq{
			Token:    p.token,
			Title:    msg.Title,
			Content:  msg.Markdown,
			Template: "markdown",
		}).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("send pushplus: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("pushplus returned %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}

	var body pushPlusResp
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return fmt.Errorf("pushplus response: %w", err)
	}
	if body.Code != 200 {
		return fmt.Errorf("pushplus code %d: %s", body.Code, body.Msg)
	}
	return nil
}
