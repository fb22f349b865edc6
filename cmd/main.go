// Package main is the entry point for the pack-assistant application.
//
// @title           Pack Assistant API
// @version         1.0.0
// @description     Warehouse packing assistant: splits order line items into box-sized units,
// @description     groups connected units into shared boxes and saves the packing draft.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/pack-assistant
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
// @description                 API key for authentication. Used when operator tokens are not configured.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Operator token issued by the warehouse identity service, as "Bearer <token>".
//
// @tag.name        Orders
// @tag.description Order import and lookup
//
// @tag.name        Capacity Settings
// @tag.description Maximum quantity per box by catalog number
//
// @tag.name        Packing
// @tag.description Packing sessions: quantities, box numbers and connections
//
// @tag.name        Export
// @tag.description Packing list export
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/guttosm/pack-assistant/docs" // swagger docs

	"github.com/guttosm/pack-assistant/config"
	"github.com/guttosm/pack-assistant/internal/app"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	application := app.InitializeApp(cfg)
	server := app.NewServer(application.Router, cfg.Server)
	server.OnShutdown(application.Shutdown)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := server.Run(ctx)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
