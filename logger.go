package drain

import "log"

// Logger is the status sink lifecycle events are reported to. Implement it
// to route worker and orchestrator transitions to your logging framework.
type Logger interface {
	// Info logs an informational message
	Info(str string)
	// Error logs an error message
	Error(str string)
}

// StdLogger adapts a *log.Logger from the standard library to the Logger
// interface.
type StdLogger struct {
	l *log.Logger
}

var _ Logger = &StdLogger{}

// NewStdLogger creates a Logger backed by the standard library's
// log.Logger.
//
// Example:
//
//	o, err := drain.New(drain.WithLogger(drain.NewStdLogger(log.Default())))
func NewStdLogger(logger *log.Logger) Logger {
	return &StdLogger{
		l: logger,
	}
}

func (l *StdLogger) Info(str string) {
	l.l.Println("info: ", str)
}

func (l *StdLogger) Error(str string) {
	l.l.Println("error: ", str)
}

// NoopLogger is a logger that discards all output. It is the default.
type NoopLogger struct{}

var _ Logger = &NoopLogger{}

// NewNoopLogger creates a new NoopLogger. This logger discards all output.
func NewNoopLogger() Logger {
	return &NoopLogger{}
}

func (*NoopLogger) Info(_ string)  {}
func (*NoopLogger) Error(_ string) {}
