package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/mail"
	"strings"

	"gopkg.in/gomail.v2"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/model"
)

// Email 用同一个邮箱给自己发送报告（SMTP 授权码登录）。
type Email struct {
	settings config.EmailConfig
	send     func(d *gomail.Dialer, msg *gomail.Message) error
}

func NewEmail(settings config.EmailConfig) *Email {
	return &Email{
		settings: settings,
		send: func(d *gomail.Dialer, msg *gomail.Message) error {
			return d.DialAndSend(msg)
		},
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, msg Message) error {
	email, err := emailAddress(e.settings)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	srv, err := smtpConfigForEmail(email)
	if err != nil {
		return err
	}
	m, err := buildEmailMessage(email, msg)
	if err != nil {
		return err
	}

	d := gomail.NewDialer(srv.host, srv.port, email, strings.TrimSpace(e.settings.AuthCode))
	d.SSL = srv.ssl
	return e.send(d, m)
}

// emailAddress 返回配置中的收件地址，同时也是发件地址。
func emailAddress(s config.EmailConfig) (string, error) {
	if strings.TrimSpace(s.AuthCode) == "" {
		return "", errors.New("email: authCode is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(s.Address))
	if err != nil {
		return "", fmt.Errorf("email: invalid address %q", s.Address)
	}
	return addr.Address, nil
}

func buildEmailMessage(email string, msg Message) (*gomail.Message, error) {
	htmlBody, err := buildEmailHTML(msg)
	if err != nil {
		return nil, err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(email, "签到助手"))
	m.SetHeader("To", email)
	m.SetHeader("Subject", StatusTitle(msg.Report.Status)+" - "+msg.Title)
	m.SetBody("text/plain", msg.Markdown)
	m.AddAlternative("text/html", htmlBody)
	return m, nil
}

type smtpServer struct {
	host string
	port int
	ssl  bool
}

// 常见邮箱的 SMTP 服务器，按域名（含子域名）查找。
var smtpServers = map[string]smtpServer{
	"qq.com":      {"smtp.qq.com", 465, true},
	"foxmail.com": {"smtp.qq.com", 465, true},
	"163.com":     {"smtp.163.com", 465, true},
	"126.com":     {"smtp.126.com", 465, true},
	"gmail.com":   {"smtp.gmail.com", 587, false},
	"outlook.com": {"smtp.office365.com", 587, false},
	"hotmail.com": {"smtp.office365.com", 587, false},
}

func smtpConfigForEmail(email string) (smtpServer, error) {
	at := strings.LastIndex(email, "@")
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if at < 0 || domain == "" {
		return smtpServer{}, fmt.Errorf("email: no domain in %q", email)
	}
	for d := domain; d != ""; {
		if srv, ok := smtpServers[d]; ok {
			return srv, nil
		}
		dot := strings.IndexByte(d, '.')
		if dot < 0 {
			break
		}
		d = d[dot+1:]
	}
	// 未知域名按惯例使用 smtp.<domain> 的 SSL 端口
	return smtpServer{host: "smtp." + domain, port: 465, ssl: true}, nil
}

var emailHTMLTpl = template.Must(template.New("email").Parse(`
<!doctype html>
<html lang="zh-CN">
  <head>
    <meta charset="utf-8" />
    <title>{{ .Title }}</title>
  </head>
  <body style="margin:0;padding:0;background:#f6f8fb;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,'PingFang SC','Microsoft YaHei',sans-serif;">
    <div style="max-width:640px;margin:0 auto;padding:24px;">
      <div style="background:#ffffff;border:1px solid #e6e8ef;border-radius:14px;overflow:hidden;">
        <div style="padding:18px 22px;background:{{ if .OK }}#16a34a{{ else }}#dc2626{{ end }};color:#ffffff;">
          <div style="font-size:16px;font-weight:700;">{{ .Status }}</div>
          <div style="margin-top:6px;font-size:12px;opacity:.95;">{{ .Title }}</div>
        </div>
        <div style="padding:22px;font-size:13px;color:#111827;line-height:1.7;">
          <div>执行时间：{{ .Report.Timestamp }}</div>
          <div>用户账户：{{ .Report.Account }}</div>
          <ul style="padding-left:18px;">
            {{ range .Report.Steps }}<li>{{ . }}</li>{{ end }}
          </ul>
          {{ with .Report.Usage }}
          <div style="margin-top:12px;border-top:1px solid #eef0f6;padding-top:12px;">
            <div>今日已用：<strong>{{ .UsedToday }}</strong></div>
            <div>剩余流量：<strong>{{ .Remaining }}</strong></div>
          </div>
          {{ end }}
        </div>
      </div>
      <div style="text-align:center;margin-top:12px;color:#9ca3af;font-size:12px;">此邮件由系统自动发送</div>
    </div>
  </body>
</html>
`))

func buildEmailHTML(msg Message) (string, error) {
	data := struct {
		Title  string
		Status string
		OK     bool
		Report model.RunReport
	}{
		Title:  msg.Title,
		Status: StatusTitle(msg.Report.Status),
		OK:     msg.Report.Succeeded(),
		Report: msg.Report,
	}
	var buf bytes.Buffer
	if err := emailHTMLTpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
