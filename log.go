package memfilemap

import "go.uber.org/zap"

// nopLogger - The default logger: every call is a no-op, matching the
// zap.NewNop() idiom.
func nopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
