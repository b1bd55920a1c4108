package log

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultTimeLayout = "2006/01/02 15:04:05.000 -07:00"

// newZapEncoder 根据 Config.Format 选择编码器：json 使用 JSON 编码器，其余使用 console 编码器。
func newZapEncoder(cfg *Config) zapcore.Encoder {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "name",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(defaultTimeLayout),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	if cfg.DisableTimestamp {
		encCfg.TimeKey = ""
	}

	switch strings.ToLower(cfg.Format) {
	case "json":
		return zapcore.NewJSONEncoder(encCfg)
	default:
		return zapcore.NewConsoleEncoder(encCfg)
	}
}

// plainErrorCore 将 error 字段降级为纯字符串，避免 cockroachdb/errors 的
// errorVerbose（含完整堆栈）写入日志。
type plainErrorCore struct {
	zapcore.Core
}

var _ zapcore.Core = plainErrorCore{}

func (c plainErrorCore) With(fields []zapcore.Field) zapcore.Core {
	return plainErrorCore{Core: c.Core.With(plainErrors(fields))}
}

func (c plainErrorCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c plainErrorCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.Core.Write(ent, plainErrors(fields))
}

func plainErrors(fields []zapcore.Field) []zapcore.Field {
	out := fields
	copied := false
	for i := range fields {
		if fields[i].Type != zapcore.ErrorType {
			continue
		}
		err, ok := fields[i].Interface.(error)
		if !ok || err == nil {
			continue
		}
		if !copied {
			out = append([]zapcore.Field(nil), fields...)
			copied = true
		}
		out[i] = zap.String(fields[i].Key, err.Error())
	}
	return out
}
