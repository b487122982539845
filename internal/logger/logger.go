// Package logger builds the zap logger shared by the binaries.
package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger when env is "development" or "local",
// and a JSON production logger otherwise.
func New(env, service string) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "development", "local":
		l, err = zap.NewDevelopment()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return l.Sugar().With("service", service), nil
}

// Must is New that panics on error, for use at the top of main.
func Must(env, service string) *zap.SugaredLogger {
	log, err := New(env, service)
	if err != nil {
		panic(err)
	}
	return log
}
