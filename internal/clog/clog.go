// Package clog wraps logrus with the per-invocation run-correlation id the
// driver attaches to every verbose log line, so multi-file or scripted
// compiler runs can be told apart in captured output.
package clog

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// New returns a logrus.Entry tagged with a fresh run id. Callers hold onto
// the returned entry for the lifetime of one compilation.
func New(verbose bool) *logrus.Entry {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !verbose, FullTimestamp: true})
	return log.WithField("run", uuid.NewString())
}
