package catalogdebug

import (
	"context"

	"catalogdebug/internal/backend"
	"catalogdebug/internal/lifecycle"
)

// Module registers the probe as a startup hook of the catalog plugin. Init
// does nothing else; the config is only read once the hook fires.
func Module(getenv Getenv) backend.Module {
	return backend.NewModule(PluginID, ModuleID, func(ctx context.Context, deps backend.Deps) error {
		deps.Lifecycle.AddStartupHook(
			Hook(deps.Config, deps.Logger, getenv),
			lifecycle.WithLabel(PluginID+"."+ModuleID),
		)
		return nil
	})
}
