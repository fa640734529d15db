// Package logging constructs the logrus.Entry threaded from cmd/netsuke
// down through every pipeline stage. Structured fields (stage, target,
// action_id) are attached with .WithFields at each call site rather than
// baked into this package, so the Entry itself stays a plain capability
// object passed down the pipeline struct, never a package-level global.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Format selects the logrus formatter.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// New builds a *logrus.Entry writing to w at level, using format. A zero
// Format or unrecognised value defaults to text, matching logrus's own
// default formatter.
func New(w io.Writer, level logrus.Level, format Format) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	switch format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(logger)
}

// NewDefault builds an Entry writing JSON to stderr at info level. The
// netsuke CLI does not use it; it builds its own text-format Entry via New.
func NewDefault() *logrus.Entry {
	return New(os.Stderr, logrus.InfoLevel, FormatJSON)
}

// NewForTest builds a silent Entry, for tests that need a Logger field but
// don't want output.
func NewForTest() *logrus.Entry {
	return New(io.Discard, logrus.PanicLevel, FormatText)
}

// WithStage returns a derived Entry annotated with the current pipeline
// stage name.
func WithStage(entry *logrus.Entry, stage string) *logrus.Entry {
	return entry.WithField("stage", stage)
}

// WithTarget returns a derived Entry annotated with a target path.
func WithTarget(entry *logrus.Entry, target string) *logrus.Entry {
	return entry.WithField("target", target)
}

// WithActionID returns a derived Entry annotated with a content-addressed
// action id.
func WithActionID(entry *logrus.Entry, actionID string) *logrus.Entry {
	return entry.WithField("action_id", actionID)
}
