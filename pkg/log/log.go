// Copyright 2024 The Okteto Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	sloglogrus "github.com/samber/slog-logrus/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// DebugLevel is the debug level
	DebugLevel = "debug"

	// InfoLevel is the info level
	InfoLevel = "info"

	// WarnLevel is the warn level
	WarnLevel = "warn"

	// ErrorLevel is the error level
	ErrorLevel = "error"
)

// levelMap transforms a slog.Level to a logrus.Level
var levelMap = map[slog.Level]logrus.Level{
	slog.LevelDebug: logrus.DebugLevel,
	slog.LevelInfo:  logrus.InfoLevel,
	slog.LevelWarn:  logrus.WarnLevel,
	slog.LevelError: logrus.ErrorLevel,
}

type logger struct {
	mu        sync.Mutex
	out       *logrus.Logger
	file      *logrus.Entry
	slog      *slog.Logger
	leveler   *slog.LevelVar
	writer    io.Writer
	decorator decorator
	spinner   *spinnerLogger
}

var log = newLogger(os.Stdout)

func newLogger(w io.Writer) *logger {
	leveler := new(slog.LevelVar)
	leveler.Set(slog.LevelWarn)

	out := logrus.New()
	out.SetOutput(w)
	out.SetLevel(levelMap[slog.LevelWarn])
	out.SetFormatter(&logrus.TextFormatter{})

	l := &logger{
		out:       out,
		leveler:   leveler,
		writer:    w,
		decorator: newPlainDecorator(),
		spinner:   newSpinnerLogger(false),
	}

	structured := logrus.New()
	structured.SetOutput(io.Discard)
	structured.SetLevel(logrus.DebugLevel)
	structured.AddHook(&teeHook{l: l})
	l.slog = slog.New(sloglogrus.Option{Level: leveler, Logger: structured}.NewLogrusHandler())
	return l
}

// teeHook sends structured records to the terminal, filtered by its level, and to the rolling file
type teeHook struct {
	l *logger
}

func (*teeHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *teeHook) Fire(e *logrus.Entry) error {
	if h.l.out.IsLevelEnabled(e.Level) {
		h.l.out.WithFields(e.Data).WithTime(e.Time).Log(e.Level, e.Message)
	}
	if h.l.file != nil {
		h.l.file.WithFields(e.Data).WithTime(e.Time).Log(e.Level, e.Message)
	}
	return nil
}

// Init configures the logger for the package to use.
// Terminal output starts at level; the rolling file under dir always logs at debug level.
func Init(level string, dir, binaryName string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}

	log = newLogger(os.Stdout)
	log.setLevel(lvl)
	if isTerminal(os.Stdout) {
		log.decorator = newTTYDecorator()
		log.spinner = newSpinnerLogger(spinnerEnabled())
	}

	if dir == "" {
		return nil
	}

	fileLogger := logrus.New()
	fileLogger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	fileLogger.SetOutput(getRollingLog(filepath.Join(dir, fmt.Sprintf("%s.log", binaryName))))
	fileLogger.SetLevel(logrus.DebugLevel)
	log.file = fileLogger.WithFields(logrus.Fields{"action": binaryName})
	log.setLevel(lvl)
	return nil
}

// SetOutput redirects the terminal output. Meant for tests.
func SetOutput(w io.Writer) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.writer = w
	log.out.SetOutput(w)
}

func getRollingLog(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// SetLevel sets the level of the terminal logger
func SetLevel(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	log.setLevel(lvl)
	return nil
}

func (l *logger) setLevel(lvl slog.Level) {
	l.out.SetLevel(levelMap[lvl])
	if l.file != nil {
		// the rolling file gets every structured record
		l.leveler.Set(slog.LevelDebug)
		return
	}
	l.leveler.Set(lvl)
}

// GetLevel returns the level of the terminal logger
func GetLevel() string {
	return log.out.GetLevel().String()
}

// Slog returns a structured logger writing to the terminal and the rolling file
func Slog() *slog.Logger {
	return log.slog
}

// Debug writes a debug-level log
func Debug(args ...interface{}) {
	log.out.Debug(args...)
	if log.file != nil {
		log.file.Debug(args...)
	}
}

// Debugf writes a debug-level log with a format
func Debugf(format string, args ...interface{}) {
	log.out.Debugf(format, args...)
	if log.file != nil {
		log.file.Debugf(format, args...)
	}
}

// Info writes a info-level log
func Info(args ...interface{}) {
	log.out.Info(args...)
	if log.file != nil {
		log.file.Info(args...)
	}
}

// Infof writes a info-level log with a format
func Infof(format string, args ...interface{}) {
	log.out.Infof(format, args...)
	if log.file != nil {
		log.file.Infof(format, args...)
	}
}

// Warnf writes a warn-level log with a format
func Warnf(format string, args ...interface{}) {
	log.out.Warnf(format, args...)
	if log.file != nil {
		log.file.Warnf(format, args...)
	}
}

// Error writes a error-level log
func Error(args ...interface{}) {
	log.out.Error(args...)
	if log.file != nil {
		log.file.Error(args...)
	}
}

// Errorf writes a error-level log with a format
func Errorf(format string, args ...interface{}) {
	log.out.Errorf(format, args...)
	if log.file != nil {
		log.file.Errorf(format, args...)
	}
}

// Success prints a message with the success symbol first
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if log.file != nil {
		log.file.Info(msg)
	}
	writeOut(log.decorator.Success(msg))
}

// Information prints a message with the information symbol first
func Information(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if log.file != nil {
		log.file.Info(msg)
	}
	writeOut(log.decorator.Information(msg))
}

// Warning prints a message with the warning symbol first
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if log.file != nil {
		log.file.Warn(msg)
	}
	writeOut(log.decorator.Warning(msg))
}

// Fail prints a message with the error symbol first
func Fail(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if log.file != nil {
		log.file.Error(msg)
	}
	writeOut(log.decorator.Fail(msg))
}

// Hint prints a message with the hint color
func Hint(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if log.file != nil {
		log.file.Info(msg)
	}
	writeOut(log.decorator.Hint(msg))
}

// Println writes a line with colors
func Println(args ...interface{}) {
	msg := fmt.Sprint(args...)
	if log.file != nil {
		log.file.Info(msg)
	}
	writeOut(msg + "\n")
}

func writeOut(msg string) {
	holdSpinner()
	defer unholdSpinner()

	log.mu.Lock()
	defer log.mu.Unlock()
	fmt.Fprint(log.writer, msg)
}

// InvalidLogLevelError is returned when the log level is invalid
type InvalidLogLevelError struct {
	level string
}

// Error returns the error message
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level '%s'", e.level)
}

// parseLevel transforms the level from a string to a slog.Level
func parseLevel(lvl string) (slog.Level, error) {
	switch lvl {
	case DebugLevel:
		return slog.LevelDebug, nil
	case InfoLevel:
		return slog.LevelInfo, nil
	case WarnLevel:
		return slog.LevelWarn, nil
	case ErrorLevel:
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, &InvalidLogLevelError{level: lvl}
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
