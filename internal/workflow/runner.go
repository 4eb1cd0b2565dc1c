// Package workflow 串联登录、签到、流量查询和通知，每次运行只发送一次通知。
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/logbus"
	"ikuuu_checkin/internal/model"
	"ikuuu_checkin/internal/notify"
	"ikuuu_checkin/internal/utils"
)

type State string

const (
	StateStart         State = "start"
	StateLoggingIn     State = "logging_in"
	StateCheckingIn    State = "checking_in"
	StateQueryingUsage State = "querying_usage"
	StateNotifying     State = "notifying"
	StateDone          State = "done"
)

type Site interface {
	Login(ctx context.Context, creds model.Credentials) model.Outcome
	CheckIn(ctx context.Context) model.Outcome
	FetchUsage(ctx context.Context) (model.Outcome, model.UsageSnapshot)
}

type Notifier interface {
	Dispatch(ctx context.Context, report model.RunReport) []notify.DeliveryResult
}

type Options struct {
	Config   config.Config
	Site     Site
	Notifier Notifier
	Bus      *logbus.Bus
	// Now 默认 time.Now，测试中可固定时间。
	Now func() time.Time
}

type Runner struct {
	cfg      config.Config
	site     Site
	notifier Notifier
	bus      *logbus.Bus
	now      func() time.Time
}

type Result struct {
	Report     model.RunReport         `json:"report"`
	Deliveries []notify.DeliveryResult `json:"deliveries"`
	States     []State                 `json:"states"`
}

func New(opts Options) *Runner {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		cfg:      opts.Config,
		site:     opts.Site,
		notifier: opts.Notifier,
		bus:      opts.Bus,
		now:      now,
	}
}

// Run 执行一次完整流程。登录失败直接进入通知；签到失败仍会查询流量，但整体状态为失败。
func (r *Runner) Run(ctx context.Context) Result {
	res := Result{States: []State{StateStart}}
	enter := func(s State) {
		res.States = append(res.States, s)
		r.bus.Log("debug", "状态切换", map[string]any{"state": string(s)})
	}

	report := model.RunReport{
		RunID:     uuid.NewString(),
		Timestamp: r.now().Format("2006-01-02 15:04:05"),
		Account:   r.account(),
		Status:    model.StatusSuccess,
	}
	r.bus.Log("info", "任务启动", map[string]any{"runId": report.RunID, "site": r.cfg.Site.BaseURL})

	if r.login(ctx, enter, &report) {
		r.checkIn(ctx, enter, &report)
		r.queryUsage(ctx, enter, &report)
	}

	enter(StateNotifying)
	// 收到退出信号也要发出通知，各渠道由自身的超时约束
	res.Deliveries = r.notifier.Dispatch(context.WithoutCancel(ctx), report)
	res.Report = report

	enter(StateDone)
	r.bus.Log("info", "任务结束", map[string]any{"runId": report.RunID, "status": string(report.Status)})
	return res
}

func (r *Runner) login(ctx context.Context, enter func(State), report *model.RunReport) bool {
	enter(StateLoggingIn)
	out := r.site.Login(ctx, r.cfg.Account)
	if !out.Succeeded {
		report.AddStep("登录失败: " + out.Message)
		report.Status = model.StatusError
		r.bus.Log("warn", "登录失败", map[string]any{"kind": string(out.Kind), "msg": out.Message})
		return false
	}
	report.AddStep("登录状态: 成功")
	r.bus.Log("info", "登录成功", nil)
	return true
}

func (r *Runner) checkIn(ctx context.Context, enter func(State), report *model.RunReport) {
	enter(StateCheckingIn)
	out := r.site.CheckIn(ctx)
	switch {
	case out.Succeeded:
		report.AddStep("签到结果: " + out.Message)
		r.bus.Log("info", "签到成功", map[string]any{"msg": out.Message})
	case out.Informational():
		report.AddStep("签到提示: " + out.Message)
		r.bus.Log("info", "今日已签到", map[string]any{"msg": out.Message})
	default:
		report.AddStep("签到失败: " + out.Message)
		report.Status = model.StatusError
		r.bus.Log("warn", "签到失败", map[string]any{"kind": string(out.Kind), "msg": out.Message})
	}
}

func (r *Runner) queryUsage(ctx context.Context, enter func(State), report *model.RunReport) {
	enter(StateQueryingUsage)
	out, usage := r.site.FetchUsage(ctx)
	if !out.Succeeded {
		report.AddStep("流量查询失败: " + out.Message)
		r.bus.Log("warn", "流量查询失败", map[string]any{"kind": string(out.Kind), "msg": out.Message})
		return
	}
	report.Usage = &usage
	r.bus.Log("info", "流量查询完成", map[string]any{
		"usedToday": usage.UsedToday,
		"remaining": usage.Remaining,
	})
}

func (r *Runner) account() string {
	if r.cfg.Notify.ShowFullAccount {
		return r.cfg.Account.Email
	}
	return utils.MaskEmail(r.cfg.Account.Email)
}
