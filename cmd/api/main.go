package main

import (
	"os"

	"github.com/jkusa/portal/internal/pkg/logger"
	"github.com/jkusa/portal/internal/server"
)

// @title JKUSA Student Portal API
// @version 1.0
// @description Student authentication and account security API for the JKUSA student union portal.

// @contact.name JKUSA Portal Team
// @contact.email portal@jkusa.org

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token

func main() {
	srv, err := server.NewServer()
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
