package calendar

import (
	"github.com/daybook-app/daybook/internal/calendar/repository"
	"github.com/daybook-app/daybook/internal/calendar/service"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/statetoken"
	"go.uber.org/fx"
)

func newStateCodec(cfg config.Config) (*statetoken.Codec, error) {
	return statetoken.NewCodec(cfg.AuthTokenSecret)
}

var Module = fx.Module("calendar",
	fx.Provide(newStateCodec),
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
