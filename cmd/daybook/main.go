package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/daybook-app/daybook/internal/bookmarks"
	"github.com/daybook-app/daybook/internal/calendar"
	"github.com/daybook-app/daybook/internal/config"
	"github.com/daybook-app/daybook/internal/googleoauth"
	"github.com/daybook-app/daybook/internal/identity"
	"github.com/daybook-app/daybook/internal/logger"
	"github.com/daybook-app/daybook/internal/notes"
	"github.com/daybook-app/daybook/internal/observability"
	"github.com/daybook-app/daybook/internal/ratelimit"
	"github.com/daybook-app/daybook/internal/redisconn"
	"github.com/daybook-app/daybook/internal/server"
	"github.com/daybook-app/daybook/internal/tasks"
	"github.com/daybook-app/daybook/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		redisconn.Module,
		ratelimit.Module,

		identity.Module,
		googleoauth.Module,
		calendar.Module,
		tasks.Module,
		notes.Module,
		bookmarks.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
