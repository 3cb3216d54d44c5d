// Package logging builds the structured loggers used across the process.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger tagged with component. Each call creates its own
// logrus.Logger; loggers from separate calls share no state.
func New(component string) *logrus.Entry {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return base.WithField("component", component)
}
