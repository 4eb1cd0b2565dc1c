package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ikuuu_checkin/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(redact(cfg)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func redact(cfg config.Config) config.Config {
	hide := func(v string) string {
		if !config.ChannelEnabled(v) {
			return v
		}
		return "******"
	}
	cfg.Account.Password = hide(cfg.Account.Password)
	cfg.Notify.ServerChan.Key = hide(cfg.Notify.ServerChan.Key)
	cfg.Notify.PushPlus.Token = hide(cfg.Notify.PushPlus.Token)
	cfg.Notify.Email.AuthCode = hide(cfg.Notify.Email.AuthCode)
	return cfg
}
