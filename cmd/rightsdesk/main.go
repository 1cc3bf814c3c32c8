package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/fieldside/rightsdesk/internal/clock"
	"github.com/fieldside/rightsdesk/internal/migration"
	"github.com/fieldside/rightsdesk/internal/observability"
	"github.com/fieldside/rightsdesk/internal/server"
	"github.com/fieldside/rightsdesk/pkg/db"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
