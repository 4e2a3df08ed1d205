package main

import (
	"os"

	"github.com/yigit/hireloop/internal/pkg/logger"
	"github.com/yigit/hireloop/internal/server"
)

// @title HireLoop API
// @version 1.0
// @description Recruitment platform API: companies, job postings, candidates, consultants, the application pipeline and messaging
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@hireloop.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
