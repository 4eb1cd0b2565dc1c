package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ikuuu_checkin/internal/notify"
	"ikuuu_checkin/internal/site"
	"ikuuu_checkin/internal/workflow"
)

var errRunFailed = errors.New("签到流程失败，详情见通知内容")

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Log in, check in, query usage and send the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin(cmd, ctx)
		},
	}
}

func runCheckin(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.loadConfig()
	if err != nil {
		return err
	}
	bus := ctx.newBus(cmd.OutOrStdout(), cfg)

	sess, err := site.New(cfg.Site, cfg.Proxy, bus)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(cfg.Notify, bus)
	bus.Log("debug", "推送渠道", map[string]any{"channels": dispatcher.ChannelNames()})

	runner := workflow.New(workflow.Options{
		Config:   cfg,
		Site:     sess,
		Notifier: dispatcher,
		Bus:      bus,
	})
	res := runner.Run(cmd.Context())
	if ctx.failOnError && !res.Report.Succeeded() {
		return errRunFailed
	}
	return nil
}
