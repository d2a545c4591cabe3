package search

import "go.uber.org/fx"

// Module provides the hybrid search service and its HTTP handler.
var Module = fx.Module("search",
	fx.Provide(NewService, NewHandler),
)
