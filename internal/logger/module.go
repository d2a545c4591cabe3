package logger

import "go.uber.org/fx"

// Module provides the process-wide structured logger.
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)
