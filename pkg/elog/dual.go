package elog

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jvogt/paritybak/internal/consts"
)

// Dual wraps a CLI logger and fans every log entry out to two
// additional sinks in the current working directory: ideas.log,
// formatted as human-readable text, and ideas-log.json, the same
// entries as newline-delimited JSON. The CLI logger still owns the
// terminal output; Dual only adds the two file
// sinks, and writes to them regardless of the CLI's own verbosity
// settings, so the files are a complete record even when the terminal
// is quiet.
type Dual struct {
	*CLI
	text *logrus.Logger
	json *logrus.Logger
}

// NewDual creates or appends to ideas.log and ideas-log.json in the
// current working directory and returns a Dual wrapping cli.
func NewDual(cli *CLI) (*Dual, error) {
	textFile, err := os.OpenFile(consts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %q", consts.LogPath)
	}
	jsonFile, err := os.OpenFile(consts.LogPathJSON, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %q", consts.LogPathJSON)
	}

	text := logrus.New()
	text.SetOutput(textFile)
	text.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	text.SetLevel(logrus.TraceLevel)

	json := logrus.New()
	json.SetOutput(jsonFile)
	json.SetFormatter(&logrus.JSONFormatter{})
	json.SetLevel(logrus.TraceLevel)

	return &Dual{CLI: cli, text: text, json: json}, nil
}

func (d *Dual) fanout(level logrus.Level, format string, x ...interface{}) {
	d.text.Logf(level, format, x...)
	d.json.Logf(level, format, x...)
}

// Debugf writes through CLI.Debugf, then records a trace-level entry
// in both file sinks regardless of whether the CLI is in debug mode.
func (d *Dual) Debugf(format string, x ...interface{}) {
	d.CLI.Debugf(format, x...)
	d.fanout(logrus.TraceLevel, format, x...)
}

// Errorf writes through CLI.Errorf, then records the entry in both
// file sinks.
func (d *Dual) Errorf(format string, x ...interface{}) {
	d.CLI.Errorf(format, x...)
	d.fanout(logrus.ErrorLevel, format, x...)
}

// Infof writes through CLI.Infof, then records a debug-level entry in
// both file sinks regardless of whether the CLI is in verbose mode.
func (d *Dual) Infof(format string, x ...interface{}) {
	d.CLI.Infof(format, x...)
	d.fanout(logrus.DebugLevel, format, x...)
}

// Printf writes through CLI.Printf, then records the entry in both
// file sinks.
func (d *Dual) Printf(format string, x ...interface{}) {
	d.CLI.Printf(format, x...)
	d.fanout(logrus.InfoLevel, format, x...)
}

// Warnf writes through CLI.Warnf, then records the entry in both file
// sinks.
func (d *Dual) Warnf(format string, x ...interface{}) {
	d.CLI.Warnf(format, x...)
	d.fanout(logrus.WarnLevel, format, x...)
}
