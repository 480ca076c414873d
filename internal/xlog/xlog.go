// Package xlog provides the contextual Debugf/Logf/Errorf helpers
// used across FSRacer's components, in the style of the rclone "fs"
// package's logging conventions, built on logrus instead of a
// hand-rolled level filter.
package xlog

import "github.com/sirupsen/logrus"

var std = logrus.New()

// SetLevel sets the global log level from a name such as "debug",
// "info", "warn", or "error". Unknown names fall back to "info".
func SetLevel(name string) {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	std.SetLevel(lvl)
}

// Debugf logs a debug-level line tagged with component.
func Debugf(component, format string, args ...interface{}) {
	std.WithField("component", component).Debugf(format, args...)
}

// Logf logs an info-level line tagged with component.
func Logf(component, format string, args ...interface{}) {
	std.WithField("component", component).Infof(format, args...)
}

// Errorf logs an error-level line tagged with component.
func Errorf(component, format string, args ...interface{}) {
	std.WithField("component", component).Errorf(format, args...)
}
