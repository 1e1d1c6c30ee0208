package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields attaches structured key/value attributes to a record.
type Fields map[string]interface{}

// Logger is the structured logging facade handed to every component. The
// default implementation fronts logrus; embedders may swap the sink through
// Init without components noticing.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	WithFields(f Fields) Logger
	WithError(err error) Logger
}

// Options configure the process-wide application log.
type Options struct {
	// Output defaults to stderr.
	Output io.Writer
	// Level is a logrus level name: debug, info, warn, error. Empty means
	// info.
	Level string
	// JSONFormat switches from text to JSON records.
	JSONFormat bool
}

var appLog = logrus.New()

// Init applies o to the application log. Calling it is optional; the
// defaults are logrus defaults.
func Init(o Options) error {
	if o.Output != nil {
		appLog.SetOutput(o.Output)
	}
	if o.Level != "" {
		level, err := logrus.ParseLevel(o.Level)
		if err != nil {
			return err
		}
		appLog.SetLevel(level)
	}
	if o.JSONFormat {
		appLog.SetFormatter(&logrus.JSONFormatter{})
	}
	return nil
}

type entryLogger struct {
	e *logrus.Entry
}

// WithComponent returns a logger scoped to a source component name.
func WithComponent(name string) Logger {
	return &entryLogger{e: appLog.WithField("component", name)}
}

// Discard returns a logger that drops everything. Useful as a default in
// option structs.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &entryLogger{e: logrus.NewEntry(l)}
}

func (l *entryLogger) Debugf(format string, args ...interface{}) { l.e.Debugf(format, args...) }
func (l *entryLogger) Infof(format string, args ...interface{})  { l.e.Infof(format, args...) }
func (l *entryLogger) Warnf(format string, args ...interface{})  { l.e.Warnf(format, args...) }
func (l *entryLogger) Errorf(format string, args ...interface{}) { l.e.Errorf(format, args...) }

func (l *entryLogger) WithFields(f Fields) Logger {
	return &entryLogger{e: l.e.WithFields(logrus.Fields(f))}
}

func (l *entryLogger) WithError(err error) Logger {
	return &entryLogger{e: l.e.WithError(err)}
}
