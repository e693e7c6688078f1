package scheduler

import (
	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

var _ gocron.Logger = (*logger)(nil)

// logger routes gocron's output through the global charm logger.
// gocron info messages are logged at debug level, the simulation jobs fire every few seconds.
type logger struct {
	l *log.Logger
}

func newLogger(prefix string) *logger {
	return &logger{l: log.Default().WithPrefix(prefix)}
}

func (s *logger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *logger) Info(msg string, args ...any)  { s.l.Debug(msg, args...) }
func (s *logger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *logger) Error(msg string, args ...any) { s.l.Error(msg, args...) }
