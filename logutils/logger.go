package logutils

import (
	"io"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Log is the logger used by the package.
var Log = logrus.New()

// Fields is the type of logrus.Fields.
type Fields = logrus.Fields

//nolint:gochecknoinits // This is the only place where we should set the log level.
func init() {
	Log.SetLevel(logrus.WarnLevel)
	Log.SetFormatter(textFormatter())
	Log.SetReportCaller(true)
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		TimestampFormat:           "2006-01-02 15:04:05",
		ForceColors:               true,
		EnvironmentOverrideColors: true,
		FullTimestamp:             true,
	}
}

// Options mirrors the log section of the config file.
type Options struct {
	Level      string
	Format     string // text or json
	File       string // empty means stderr only
	MaxSize    int    // megabytes
	MaxBackups int
	MaxAge     int // days
}

// Configure applies level, formatter and output. When a file is given, log
// lines go to both stderr and a rotating file.
func Configure(opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return err
		}
		level = parsed
	}
	Log.SetLevel(level)

	if strings.EqualFold(opts.Format, "json") {
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		Log.SetFormatter(textFormatter())
	}

	if opts.File == "" {
		Log.SetOutput(os.Stderr)
		return nil
	}
	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   true,
	}
	Log.SetOutput(io.MultiWriter(os.Stderr, rotating))
	return nil
}
