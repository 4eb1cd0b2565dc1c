package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ikuuu_checkin/internal/model"
)

// ErrMissingCredentials 表示缺少 EMAIL / PASSWD，必须在任何网络请求前中止。
var ErrMissingCredentials = errors.New("missing required credentials")

type Config struct {
	Account model.Credentials `yaml:"account"`
	Site    SiteConfig        `yaml:"site"`
	Proxy   ProxyConfig       `yaml:"proxy"`
	Notify  NotifyConfig      `yaml:"notify"`
	Log     LogConfig         `yaml:"log"`
}

type SiteConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"baseURL"`
	LoginTimeoutMs int    `yaml:"loginTimeoutMs"`
	TimeoutMs      int    `yaml:"timeoutMs"`
	UserAgent      string `yaml:"userAgent"`
	// MinIntervalMs 两次请求之间的最小间隔，0 表示不限速。
	MinIntervalMs int `yaml:"minIntervalMs"`
}

func (c SiteConfig) LoginTimeout() time.Duration {
	if c.LoginTimeoutMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.LoginTimeoutMs) * time.Millisecond
}

func (c SiteConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c SiteConfig) MinInterval() time.Duration {
	if c.MinIntervalMs <= 0 {
		return 0
	}
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

type ProxyConfig struct {
	Global string `yaml:"global"`
}

type NotifyConfig struct {
	Title string `yaml:"title"`
	// ShowFullAccount 为 false 时通知中的邮箱会打码。
	ShowFullAccount bool             `yaml:"showFullAccount"`
	TimeoutMs       int              `yaml:"timeoutMs"`
	ServerChan      ServerChanConfig `yaml:"serverChan"`
	PushPlus        PushPlusConfig   `yaml:"pushPlus"`
	Email           EmailConfig      `yaml:"email"`
}

func (c NotifyConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type ServerChanConfig struct {
	Key     string `yaml:"key"`
	BaseURL string `yaml:"baseURL"`
}

type PushPlusConfig struct {
	Token string `yaml:"token"`
	URL   string `yaml:"url"`
}

type EmailConfig struct {
	Address  string `yaml:"address"`
	AuthCode string `yaml:"authCode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Color: auto / always / never
	Color string `yaml:"color"`
}

// ChannelEnabled 判断推送渠道是否启用：未设置或占位值 "1" 均视为关闭。
func ChannelEnabled(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "1"
}

// Env 是环境变量来源，测试中可以替换为 map。
type Env func(key string) string

func OSEnv() Env { return os.Getenv }

func MapEnv(m map[string]string) Env {
	return func(key string) string { return m[key] }
}

// Load 读取 yaml 配置（文件不存在时使用默认值），再用环境变量覆盖。
func Load(path string, env Env) (Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, err
		}
	}
	if env == nil {
		env = OSEnv()
	}
	cfg.applyEnv(env)
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env Env) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(env(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Account.Email, "EMAIL")
	set(&c.Account.Password, "PASSWD")
	set(&c.Notify.ServerChan.Key, "SCKEY")
	set(&c.Notify.PushPlus.Token, "TOKEN")
	set(&c.Notify.Email.Address, "MAIL_ADDRESS")
	set(&c.Notify.Email.AuthCode, "MAIL_AUTHCODE")
	set(&c.Site.BaseURL, "CHECKIN_BASE_URL")
	set(&c.Proxy.Global, "CHECKIN_PROXY")
	set(&c.Log.Level, "CHECKIN_LOG_LEVEL")
}

func (c *Config) applyDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "iKuuu"
	}
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = "https://ikuuu.one"
	}
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if c.Notify.Title == "" {
		c.Notify.Title = c.Site.Name + " 机场状态报告"
	}
	if c.Notify.ServerChan.BaseURL == "" {
		c.Notify.ServerChan.BaseURL = "https://sctapi.ftqq.com"
	}
	if c.Notify.PushPlus.URL == "" {
		c.Notify.PushPlus.URL = "http://www.pushplus.plus/send"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Color == "" {
		c.Log.Color = "auto"
	}
}

func (c Config) validate() error {
	if err := c.Account.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}
	if !strings.HasPrefix(c.Site.BaseURL, "http://") && !strings.HasPrefix(c.Site.BaseURL, "https://") {
		return fmt.Errorf("site.baseURL must start with http:// or https://, got %q", c.Site.BaseURL)
	}
	switch c.Log.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("log.color: unsupported value %q", c.Log.Color)
	}
	return nil
}
