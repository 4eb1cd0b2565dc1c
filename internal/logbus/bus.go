package logbus

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

type Message struct {
	Type string `json:"type"`
	Time int64  `json:"time"`
	Data any    `json:"data"`
}

type LogData struct {
	Level  string         `json:"level"`
	Msg    string         `json:"msg"`
	Fields map[string]any `json:"fields,omitempty"`
}

type sink struct {
	w     io.Writer
	min   int
	color bool
}

// Bus 保存最近的日志（环形缓冲），并同步写到控制台等输出。
type Bus struct {
	mu    sync.Mutex
	buf   []Message
	cap   int
	sinks []sink
	now   func() time.Time
}

func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 200
	}
	return &Bus{
		cap: capacity,
		buf: make([]Message, 0, capacity),
		now: time.Now,
	}
}

// AddSink 注册一个输出，低于 minLevel 的日志不会写入。
func (b *Bus) AddSink(w io.Writer, minLevel string, color bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink{w: w, min: levelRank(minLevel), color: color})
}

// ConsoleColor 根据配置（auto/always/never）决定是否给控制台输出着色。
func ConsoleColor(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (b *Bus) Snapshot() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.buf))
	copy(out, b.buf)
	return out
}

func (b *Bus) Publish(typ string, data any) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	at := b.now()
	msg := Message{
		Type: typ,
		Time: at.UnixMilli(),
		Data: data,
	}
	if len(b.buf) < b.cap {
		b.buf = append(b.buf, msg)
	} else if b.cap > 0 {
		copy(b.buf, b.buf[1:])
		b.buf[b.cap-1] = msg
	}
	if ld, ok := data.(LogData); ok {
		for _, s := range b.sinks {
			if levelRank(ld.Level) < s.min {
				continue
			}
			_, _ = io.WriteString(s.w, formatLine(at, ld, s.color))
		}
	}
}

func (b *Bus) Log(level, message string, fields map[string]any) {
	b.Publish("log", LogData{Level: level, Msg: message, Fields: fields})
}

func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 0
	case "warn", "warning":
		return 2
	case "error":
		return 3
	default:
		return 1
	}
}

var levelColors = map[string]string{
	"debug": "\x1b[90m",
	"info":  "\x1b[36m",
	"warn":  "\x1b[33m",
	"error": "\x1b[31m",
}

func formatLine(at time.Time, ld LogData, color bool) string {
	level := strings.ToUpper(ld.Level)
	if color {
		if c, ok := levelColors[strings.ToLower(ld.Level)]; ok {
			level = c + level + "\x1b[0m"
		}
	}
	var sb strings.Builder
	sb.WriteString(at.Format("2006-01-02 15:04:05"))
	sb.WriteString(" ")
	sb.WriteString(level)
	sb.WriteString(" ")
	sb.WriteString(ld.Msg)

	keys := make([]string, 0, len(ld.Fields))
	for k := range ld.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, ld.Fields[k])
	}
	sb.WriteString("\n")
	return sb.String()
}
