package tasks

import (
	"github.com/daybook-app/daybook/internal/tasks/repository"
	"github.com/daybook-app/daybook/internal/tasks/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tasks",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
