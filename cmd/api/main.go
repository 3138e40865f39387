package main

import (
	"context"
	"os"

	"github.com/yigit/diploma-registry/internal/pkg/logger"
	"github.com/yigit/diploma-registry/internal/server"
)

// @title Diploma Registry API
// @version 1.0
// @description Registry of graduation diplomas with scanned certificates, catalog-aware search and invite-based staff onboarding.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token: "Bearer <jwt>"

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
