package zerolog

import (
	"io"
	stdlog "log"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	loglib "github.com/darianmavgo/geoingest/log"
)

type Config struct {
	LogLevel string
	Out      io.Writer
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "timestamp"
	zerolog.ErrorFieldName = "error.message"
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return path.Base(file) + ":" + strconv.Itoa(line)
	}
}

// Logger adapts a zerolog logger to loglib.Logger.
type Logger struct {
	zerologger *zerolog.Logger
	fields     loglib.Fields
}

// NewLogger builds a console logger writing to stderr unless config.Out is
// set. An unparseable level leaves the logger at info. Colors are only used
// on terminals.
func NewLogger(config *Config) *Logger {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || config.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	out := config.Out
	if out == nil {
		out = os.Stderr
	}
	noColor := true
	if f, ok := out.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	console := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.NoColor = noColor
		w.TimeFormat = time.RFC3339
	})

	zl := zerolog.New(console).
		With().
		Timestamp().
		Caller().
		Logger().
		Level(level)

	return &Logger{zerologger: &zl}
}

// SetGlobalLogger routes the stdlib log package through l, so dependencies
// logging to log.Default() end up in the same stream.
func SetGlobalLogger(l *Logger) {
	stdlog.SetFlags(0)
	stdlog.SetOutput(l.zerologger)
	zerolog.DefaultContextLogger = l.zerologger
}

func (l *Logger) Trace(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Trace(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Debug(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Debug(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Info(msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Info(), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Warn(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Warn().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) Error(err error, msg string, fields ...loglib.Fields) {
	withFields(l.zerologger.Error().Err(err), append(fields, l.fields)...).Msg(msg)
}

func (l *Logger) WithFields(fields loglib.Fields) loglib.Logger {
	return &Logger{
		zerologger: l.zerologger,
		fields:     loglib.MergeFields(l.fields, fields),
	}
}

func withFields(event *zerolog.Event, fieldMaps ...loglib.Fields) *zerolog.Event {
	for _, m := range fieldMaps {
		for key, value := range m {
			switch v := value.(type) {
			case string:
				event = event.Str(key, v)
			case int:
				event = event.Int(key, v)
			case int64:
				event = event.Int64(key, v)
			case float64:
				event = event.Float64(key, v)
			case bool:
				event = event.Bool(key, v)
			case time.Duration:
				event = event.Dur(key, v)
			case []string:
				event = event.Strs(key, v)
			default:
				event = event.Interface(key, v)
			}
		}
	}
	return event
}
