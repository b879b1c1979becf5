// Package applog wires the CLI's diagnostic output through the teacher's
// logging library, matching how esm.sh's server package keeps a single
// package-level *logx.Logger instance.
package applog

import (
	logx "github.com/ije/gox/log"
)

// std writes to stderr by default, same as server.go's dev-mode logger
// (a zero-value *logx.Logger with no file target configured).
var std = &logx.Logger{}

// SetLevel adjusts the logger's minimum level, called once from main after
// flags are parsed.
func SetLevel(name string) {
	std.SetLevelByName(name)
}

func Debugf(format string, v ...interface{}) { std.Debugf(format, v...) }
func Warnf(format string, v ...interface{})  { std.Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { std.Errorf(format, v...) }

// FlushBuffer mirrors server.go's shutdown sequence, which always flushes
// the logger's buffer before the process exits.
func FlushBuffer() { std.FlushBuffer() }
