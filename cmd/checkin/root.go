package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ikuuu_checkin/internal/config"
	"ikuuu_checkin/internal/logbus"
)

type commandContext struct {
	configPath  string
	failOnError bool
	env         config.Env
}

func (c *commandContext) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath, c.env)
	if err != nil {
		return config.Config{}, fmt.Errorf("配置错误: %w", err)
	}
	return cfg, nil
}

func (c *commandContext) newBus(out io.Writer, cfg config.Config) *logbus.Bus {
	bus := logbus.New(200)
	var f *os.File
	if file, ok := out.(*os.File); ok {
		f = file
	}
	bus.AddSink(out, cfg.Log.Level, logbus.ConsoleColor(cfg.Log.Color, f))
	return bus
}

func newRootCommand(env config.Env) *cobra.Command {
	ctx := &commandContext{env: env}

	rootCmd := &cobra.Command{
		Use:           "checkin",
		Short:         "机场每日自动签到并推送结果",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckin(cmd, ctx)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "./config.yaml", "Configuration file path (optional)")
	rootCmd.PersistentFlags().BoolVar(&ctx.failOnError, "fail-on-error", false, "Exit with status 1 when the run reports an error")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
