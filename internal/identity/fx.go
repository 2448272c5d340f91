package identity

import (
	"github.com/daybook-app/daybook/internal/identity/repository"
	"github.com/daybook-app/daybook/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
