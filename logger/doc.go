// Package logger provides structured logging built on zerolog.
//
// Loggers are constructed explicitly and passed to the components that
// need them; the library keeps no global logger. Components derive a
// tagged child with WithComponent and attach per-call fields with Fields:
//
//	log := logger.New(&cfg, "vimeonet").WithComponent("client")
//	log.Info("request completed", logger.Fields(logger.FieldPath, "/me", logger.FieldStatusCode, 200))
//
// Nop returns a logger that discards everything, the default for
// components built without one.
package logger
