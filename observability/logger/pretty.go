package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // static palette shared by all encoder clones
var levelColors = map[zapcore.Level]*color.Color{
	zapcore.DebugLevel:  color.New(color.FgMagenta, color.Bold),
	zapcore.InfoLevel:   color.New(color.FgGreen, color.Bold),
	zapcore.WarnLevel:   color.New(color.FgYellow, color.Bold),
	zapcore.ErrorLevel:  color.New(color.FgRed, color.Bold),
	zapcore.DPanicLevel: color.New(color.FgHiRed, color.Bold),
	zapcore.PanicLevel:  color.New(color.FgHiRed, color.Bold),
	zapcore.FatalLevel:  color.New(color.FgHiRed, color.Bold, color.Underline),
}

//nolint:gochecknoglobals // shared buffer pool
var prettyPool = buffer.NewPool()

// prettyEncoder prints a coloured header line per entry and the entry fields
// as indented JSON underneath it.
type prettyEncoder struct {
	// fields encodes only the structured context; entry keys are left empty.
	zapcore.Encoder
}

func newPrettyEncoder(cfg zapcore.EncoderConfig) *prettyEncoder {
	cfg.MessageKey = ""
	cfg.LevelKey = ""
	cfg.TimeKey = ""
	cfg.NameKey = ""
	cfg.CallerKey = ""
	cfg.StacktraceKey = ""
	return &prettyEncoder{Encoder: zapcore.NewJSONEncoder(cfg)}
}

func newPrettyLogger(cfg *zap.Config) *zap.Logger {
	core := zapcore.NewCore(newPrettyEncoder(cfg.EncoderConfig), zapcore.AddSync(os.Stdout), cfg.Level)
	return zap.New(core, zap.ErrorOutput(zapcore.AddSync(os.Stderr)))
}

func (e *prettyEncoder) Clone() zapcore.Encoder {
	return &prettyEncoder{Encoder: e.Encoder.Clone()}
}

func (e *prettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	raw, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}
	defer raw.Free()

	out := prettyPool.Get()
	out.AppendString(header(entry))
	out.AppendByte('\n')

	body := bytes.TrimSpace(raw.Bytes())
	if len(body) > 2 { // more than "{}"
		var indented bytes.Buffer
		if json.Indent(&indented, body, "  ", "  ") != nil {
			out.AppendString("  ")
			out.AppendString(string(body))
		} else {
			out.AppendString("  ")
			out.AppendString(color.New(color.Faint).Sprint(indented.String()))
		}
		out.AppendByte('\n')
	}

	return out, nil
}

func header(entry zapcore.Entry) string {
	ts := entry.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	lc, ok := levelColors[entry.Level]
	if !ok {
		lc = levelColors[zapcore.InfoLevel]
	}

	var b strings.Builder
	b.WriteString(color.New(color.Faint).Sprint("[" + ts.Format(time.DateTime) + "]"))
	b.WriteByte(' ')
	b.WriteString(lc.Sprint(strings.ToUpper(entry.Level.String())))
	if entry.LoggerName != "" {
		b.WriteByte(' ')
		b.WriteString(color.CyanString(entry.LoggerName))
	}
	if entry.Message != "" {
		b.WriteByte(' ')
		b.WriteString(entry.Message)
	}
	return b.String()
}
