package lgr

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mdobak/go-xerrors"
	"github.com/natefinch/lumberjack"
	"go.opentelemetry.io/otel/trace"
)

// Logger is the process-wide structured logger. All packages log through it.
var Logger *slog.Logger

func init() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		handler = newPrettyHandler(os.Stdout, level)
	} else {
		rolling := &lumberjack.Logger{
			Filename:   filepath.Join("logs", "vp-go.log"),
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     7,    // days
			Compress:   true, // compress old logs
		}
		handler = slog.NewJSONHandler(io.MultiWriter(os.Stdout, rolling), &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replaceAttr,
		})
	}

	Logger = slog.New(traceHandler{handler})
}

// traceHandler stamps records with OTEL trace/span IDs when the context
// carries a valid span.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		r.AddAttrs(
			slog.String("traceId", span.TraceID().String()),
			slog.String("spanId", span.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

type stackFrame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

// replaceAttr expands error attrs into message plus stack trace frames.
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindAny {
		return a
	}

	err, ok := a.Value.Any().(error)
	if !ok {
		return a
	}

	a.Value = slog.GroupValue(
		slog.String("msg", err.Error()),
		slog.Any("trace", marshalStack(err)),
	)
	return a
}

func marshalStack(err error) []stackFrame {
	st := xerrors.StackTrace(err)
	if len(st) == 0 {
		return nil
	}

	frames := st.Frames()
	s := make([]stackFrame, len(frames))
	for i, v := range frames {
		s[i] = stackFrame{
			Func:   filepath.Base(v.Function),
			Source: filepath.Join(filepath.Base(filepath.Dir(v.File)), filepath.Base(v.File)),
			Line:   v.Line,
		}
	}

	return s
}

// prettyHandler is a dev-mode console handler with colored levels.
type prettyHandler struct {
	slog.Handler
	out io.Writer
}

func newPrettyHandler(out io.Writer, level slog.Level) slog.Handler {
	return prettyHandler{
		Handler: slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		out:     out,
	}
}

func (h prettyHandler) Handle(ctx context.Context, r slog.Record) error {
	switch r.Level {
	case slog.LevelDebug:
		r.Message = color.MagentaString(r.Message)
	case slog.LevelInfo:
		r.Message = color.CyanString(r.Message)
	case slog.LevelWarn:
		r.Message = color.YellowString(r.Message)
	case slog.LevelError:
		r.Message = color.RedString(r.Message)
	}
	return h.Handler.Handle(ctx, r)
}

func (h prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return prettyHandler{Handler: h.Handler.WithAttrs(attrs), out: h.out}
}

func (h prettyHandler) WithGroup(name string) slog.Handler {
	return prettyHandler{Handler: h.Handler.WithGroup(name), out: h.out}
}
