package googleoauth

import "go.uber.org/fx"

var Module = fx.Module("googleoauth",
	fx.Provide(New),
)
