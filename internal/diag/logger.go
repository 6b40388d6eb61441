package diag

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger 为运行级结构化日志器：单行 JSON 事件，编码交给 zerolog。
// 事件字段沿用 comp/stage 约定：stage ∈ start|finish|warn|error。
// 默认输出到 logs/ 下按大小轮转的文件。
type Logger struct {
	zl zerolog.Logger
}

// NewLogger 以相关标识与级别初始化，日志写入默认目录 logs/，10 MiB 轮转。
func NewLogger(corrID, level string) *Logger {
	return NewLoggerTo(NewRotatingFile("logs", 10*1024*1024), corrID, level)
}

// NewLoggerTo 指定 sink 初始化（测试用）。
func NewLoggerTo(w io.Writer, corrID, level string) *Logger {
	if w == nil {
		w = os.Stderr
	}
	zl := zerolog.New(w).Level(parseLevel(level)).
		With().Timestamp().Str("corr_id", corrID).Logger()
	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.zl.Info().Str("comp", comp).Str("stage", "start").Msg(msg)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 entry/batch 定位的 start。
func (l *Logger) StartWith(comp, msg, entry, batch string) *Timer {
	l.zl.Info().Str("comp", comp).Str("stage", "start").
		Str("entry", entry).Str("batch", batch).Msg(msg)
	return &Timer{l: l, comp: comp, entry: entry, batch: batch, t0: time.Now()}
}

// Warn 记录 warn 事件（如单条目解析失败）；不中断运行。
func (l *Logger) Warn(comp, msg, entry string) {
	l.zl.Warn().Str("comp", comp).Str("stage", "warn").Str("entry", entry).Msg(msg)
}

// Error 记录 error 事件（不采样）。
func (l *Logger) Error(comp string, code Code, msg string, err error) {
	ev := l.zl.Error().Str("comp", comp).Str("stage", "error").Str("code", string(code))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// Debug 记录带键值的调试事件。
func (l *Logger) Debug(comp, msg string, kv map[string]string) {
	ev := l.zl.Debug().Str("comp", comp).Str("stage", "start")
	for k, v := range kv {
		ev = ev.Str(k, v)
	}
	ev.Msg(msg)
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l     *Logger
	comp  string
	entry string
	batch string
	t0    time.Time
}

// Finish 记录 finish；count 为阶段产出量。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.zl.Info().Str("comp", t.comp).Str("stage", "finish").
		Str("entry", t.entry).Str("batch", t.batch).
		Int64("dur_ms", time.Since(t.t0).Milliseconds()).
		Int64("count", count).Msg(msg)
}
