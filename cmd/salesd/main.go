package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/devstorehq/sales-service/internal/config"
	"github.com/devstorehq/sales-service/internal/events"
	"github.com/devstorehq/sales-service/internal/migration"
	"github.com/devstorehq/sales-service/internal/observability"
	"github.com/devstorehq/sales-service/internal/server"
	"github.com/devstorehq/sales-service/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		events.Module,

		// HTTP surface, pulls in the sale domain module
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
