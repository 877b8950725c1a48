package logger

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// FXModule provides *LoggerClient and exposes it as Logger.
// A logger.Config must be available in the container.
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		ProvideLogger,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// ProvideLogger exposes the concrete client as the Logger interface.
func ProvideLogger(l *LoggerClient) Logger {
	return l
}

// FXEventLogger routes fx's own lifecycle events through zap.
// Use it with fx.WithLogger.
func FXEventLogger(l *LoggerClient) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: l.Zap}
}

// RegisterLoggerLifecycle flushes the logger when the application stops.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := client.Sync()
			// stderr on a terminal cannot be fsynced
			if errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EINVAL) {
				return nil
			}
			return err
		},
	})
}
