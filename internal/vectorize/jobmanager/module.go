package jobmanager

import "go.uber.org/fx"

// Module provides the job lifecycle manager.
var Module = fx.Module("jobmanager",
	fx.Provide(NewManager),
)
