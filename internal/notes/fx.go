package notes

import (
	"github.com/daybook-app/daybook/internal/notes/repository"
	"github.com/daybook-app/daybook/internal/notes/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notes",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
