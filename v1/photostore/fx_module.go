package photostore

import "go.uber.org/fx"

// FXModule provides *Repository. It expects postgres.FXModule and a
// logger.Logger in the same application.
var FXModule = fx.Module("photostore",
	fx.Provide(NewRepository),
)
