// Package logger is qline's debug log. The editor shares the host's
// terminal, so log output may only go to a file, and only to one the
// host names explicitly; every call is a no-op until Init.
package logger

import "go.uber.org/zap"

var sugar *zap.SugaredLogger

// Init routes debug logging to the named file. qline never picks a
// path itself; hosts that want a trace pass one in (qline-calc wires
// this to QLINE_LOG_FILE).
func Init(path string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	sugar = log.Sugar()
	sugar.Debugw("logging enabled", "path", path)
	return nil
}

// Close flushes and disables logging.
func Close() {
	if sugar == nil {
		return
	}
	_ = sugar.Sync()
	sugar = nil
}

// Debug traces the interactive loop: key dispatch, raw-mode
// transitions.
func Debug(msg string, keysAndValues ...any) {
	if sugar != nil {
		sugar.Debugw(msg, keysAndValues...)
	}
}

// Warn records recoverable faults, such as a failed raw-mode entry.
func Warn(msg string, keysAndValues ...any) {
	if sugar != nil {
		sugar.Warnw(msg, keysAndValues...)
	}
}
