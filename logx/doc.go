// Package logx is a printf-style package logger backed by zap.
//
// The logger is configured from the environment at start-up:
//
//	LOG_LEVEL   TRACE, DEBUG, INFO (default), WARN, ERROR, OFF
//	LOG_FORMAT  console (default), json, cloudwatch
//	LOG_COLOR   colorize console level names
//	LOG_CALLER  include the caller location
//
// Usage:
//
//	logx.Info("resolved %s from %s", name, source)
//	logx.DebugStruct("payload", data)
package logx
