package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

type ServerChan struct {
	client  *resty.Client
	baseURL string
	key     string
}

func NewServerChan(client *resty.Client, baseURL, key string) *ServerChan {
	return &ServerChan{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     strings.TrimSpace(key),
	}
}

func (s *ServerChan) Name() string { return "serverchan" }

type serverChanResp struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
}

// Send 以 GET 请求推送，channel=9 表示微信和邮件同时推送。
func (s *ServerChan) Send(ctx context.Context, msg Message) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"title":   StatusTitle(msg.Report.Status),
			"desp":    msg.Markdown,
			"channel": "9",
		}).
		Get(s.baseURL + "/" + s.key + ".send")
	if err != nil {
		return fmt.Errorf("send serverchan: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("serverchan returned %d: %s", resp.StatusCode(), truncate(resp.String(), 256))
	}

	var body serverChanResp
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Code == nil {
		return fmt.Errorf("serverchan returned unexpected body: %s", truncate(resp.String(), 256))
	}
	if *body.Code != 0 {
		return fmt.Errorf("serverchan code %d: %s", *body.Code, body.Message)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
