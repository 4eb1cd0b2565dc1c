package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ikuuu_checkin/internal/model"
	"ikuuu_checkin/internal/notify"
	"ikuuu_checkin/internal/utils"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test report to every configured channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			bus := ctx.newBus(cmd.ErrOrStderr(), cfg)
			dispatcher := notify.NewDispatcher(cfg.Notify, bus)

			usage := model.UsageSnapshot{UsedToday: "0B", Remaining: model.NA}
			report := model.RunReport{
				RunID:     uuid.NewString(),
				Timestamp: time.Now().Format("2006-01-02 15:04:05"),
				Account:   utils.MaskEmail(cfg.Account.Email),
				Status:    model.StatusSuccess,
				Steps:     []string{"🧪 通知渠道测试"},
				Usage:     &usage,
			}
			results := dispatcher.Dispatch(cmd.Context(), report)
			if len(results) == 0 {
				return errors.New("no notification channel configured")
			}
			failed := 0
			for _, r := range results {
				if r.Sent {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: sent\n", r.Channel)
					continue
				}
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "%s: failed (%s)\n", r.Channel, r.Error)
			}
			if failed == len(results) {
				return errors.New("all notification channels failed")
			}
			return nil
		},
	}
}
