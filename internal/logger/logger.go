// Package logger sets up the internal and access logs from the logging config
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Durai69/LLS-Survey/cmd/llssurvey/config"
)

const (
	internalLogFile = "llssurvey.log"
	accessLogFile   = "access.log"
	smartLogFile    = "errors.log"
)

var accessLogger io.Writer = os.Stderr

// AccessLogWriter returns the writer the access log is written to
func AccessLogWriter() io.Writer {
	return accessLogger
}

// Init initializes the logging from the loaded config
func Init() {
	conf := config.Get().Logging

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(conf.Internal.Level)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	internal, err := newWriter(conf.Internal.LoggerConf, internalLogFile)
	if err != nil {
		log.WithError(err).Fatal("could not open internal log")
	}
	log.SetOutput(internal)

	accessLogger, err = newWriter(conf.Access, accessLogFile)
	if err != nil {
		log.WithError(err).Fatal("could not open access log")
	}

	if smart := conf.Internal.Smart; smart.Enabled {
		hook, err := newSmartHook(smart.Dir)
		if err != nil {
			log.WithError(err).Fatal("could not open smart log")
		}
		log.AddHook(hook)
	}
}

func openLogFile(dir, name string) (*os.File, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o640)
	return f, errors.WithStack(err)
}

// newWriter returns a writer writing to stderr and/or a file in the
// configured directory. Without either, logs are discarded.
func newWriter(conf config.LoggerConf, fileName string) (io.Writer, error) {
	var writers []io.Writer
	if conf.StdErr {
		writers = append(writers, os.Stderr)
	}
	if conf.Dir != "" {
		f, err := openLogFile(conf.Dir, fileName)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	switch len(writers) {
	case 0:
		return io.Discard, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

// smartHook duplicates error entries into a dedicated file
type smartHook struct {
	out       io.Writer
	formatter log.Formatter
}

func newSmartHook(dir string) (*smartHook, error) {
	f, err := openLogFile(dir, smartLogFile)
	if err != nil {
		return nil, err
	}
	return &smartHook{
		out:       f,
		formatter: &log.JSONFormatter{},
	}, nil
}

// Levels implements the logrus.Hook interface
func (*smartHook) Levels() []log.Level {
	return []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel}
}

// Fire implements the logrus.Hook interface
func (h *smartHook) Fire(entry *log.Entry) error {
	data, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(data)
	return err
}
