// Package logger provides structured logging for subtitler using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Console colour is turned
// off automatically when the output is not a terminal.
//
//	log := logger.WithComponent("pipeline")
//	log.Info("step finished", logger.Fields("step", "extract", "duration_ms", 42))
package logger
