package logger

import "go.uber.org/zap"

// New builds the production logger shared by all binaries.
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
