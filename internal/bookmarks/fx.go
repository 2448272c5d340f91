package bookmarks

import (
	"github.com/daybook-app/daybook/internal/bookmarks/repository"
	"github.com/daybook-app/daybook/internal/bookmarks/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bookmarks",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
