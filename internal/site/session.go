// Package site 封装与机场站点的会话：登录、签到和流量查询共用同一个 cookie jar。
package site

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/logbus"
	"ikuuu_checkin/internal/model"
	"ikuuu_checkin/internal/parser"
	"ikuuu_checkin/internal/utils"
)

const (
	loginPath   = "/auth/login"
	checkinPath = "/user/checkin"
	userPath    = "/user"
)

type Session struct {
	cfg     config.SiteConfig
	bus     *logbus.Bus
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg config.SiteConfig, proxyCfg config.ProxyConfig, bus *logbus.Bus) (*Session, error) {
	client, err := newClient(cfg, proxyCfg, bus)
	if err != nil {
		return nil, err
	}
	s := &Session{
		cfg:    cfg,
		bus:    bus,
		client: client,
	}
	if interval := cfg.MinInterval(); interval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return s, nil
}

// Login 以表单方式提交邮箱和密码，ret == 1 视为登录成功。
func (s *Session) Login(ctx context.Context, creds model.Credentials) model.Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout())
	defer cancel()
	if out, ok := s.wait(ctx); !ok {
		return out
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"email":  creds.Email,
			"passwd": creds.Password,
		}).
		Post(loginPath)
	if err != nil {
		return networkFailure(err)
	}
	return parser.Outcome(resp.Body(), "登录成功")
}

// CheckIn 执行每日签到。"今日已签到"会被识别为单独的提示类结果。
func (s *Session) CheckIn(ctx context.Context) model.Outcome {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()
	if out, ok := s.wait(ctx); !ok {
		return out
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Post(checkinPath)
	if err != nil {
		return networkFailure(err)
	}
	out := parser.Outcome(resp.Body(), "签到成功")
	if out.Kind == model.OutcomeRejected && parser.IsAlreadyCheckedIn(out.Message) {
		out.Kind = model.OutcomeAlreadyCheckedIn
	}
	return out
}

// FetchUsage 读取用户页并提取流量。页面缺少数据时返回 N/A，不算失败。
func (s *Session) FetchUsage(ctx context.Context) (model.Outcome, model.UsageSnapshot) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()
	if out, ok := s.wait(ctx); !ok {
		return out, model.EmptyUsage()
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Get(userPath)
	if err != nil {
		return networkFailure(err), model.EmptyUsage()
	}
	if resp.StatusCode() >= 400 {
		return model.Failed(model.OutcomeRejected, fmt.Sprintf("HTTP 状态码 %d", resp.StatusCode())), model.EmptyUsage()
	}

	usage, family := parser.ParseUsage(resp.String())
	s.bus.Log("debug", "流量解析结果", map[string]any{
		"family":    string(family),
		"usedToday": usage.UsedToday,
		"remaining": usage.Remaining,
	})
	return model.OK("流量查询成功"), usage
}

func (s *Session) wait(ctx context.Context) (model.Outcome, bool) {
	if s.limiter == nil {
		return model.Outcome{}, true
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return networkFailure(err), false
	}
	return model.Outcome{}, true
}

func networkFailure(err error) model.Outcome {
	return model.Failed(model.OutcomeNetwork, fmt.Sprintf("网络错误 (%v)", err))
}

func newClient(cfg config.SiteConfig, proxyCfg config.ProxyConfig, bus *logbus.Bus) (*resty.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetCookieJar(jar).
		SetRetryCount(0).
		SetHeader("User-Agent", utils.NormalizeUserAgent(cfg.UserAgent)).
		SetHeader("Origin", cfg.BaseURL).
		SetHeader("Referer", cfg.BaseURL+loginPath)

	if proxyCfg.Global != "" {
		client.SetProxy(proxyCfg.Global)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		bus.Log("debug", "http request", map[string]any{
			"method": req.Method,
			"url":    req.URL,
		})
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		bus.Log("debug", "http response", map[string]any{
			"url":     resp.Request.URL,
			"status":  resp.StatusCode(),
			"elapsed": resp.Time().Round(time.Millisecond).String(),
		})
		return nil
	})

	return client, nil
}
