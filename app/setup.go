package app

import (
	"fmt"
	"log"
	"os"

	"github.com/campusgate/admissions-api/api"
	"github.com/campusgate/admissions-api/config"
	"github.com/campusgate/admissions-api/database"
	"github.com/campusgate/admissions-api/router"
	"github.com/campusgate/admissions-api/services/cron"
)

// SetupAndRunServer wires the whole service: env, store, seed data, cron jobs,
// routes, and the listener. Blocks until the server stops.
func SetupAndRunServer() error {
	if err := config.LoadENV(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and DB_* variables are set")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Failed to run database migrations")
		return err
	}

	// Seed the bootstrap admin so provisioning has a first caller
	if err := database.NewSeeder(store.DB()).SeedAll(); err != nil {
		log.Printf("Warning: seeding failed: %v", err)
	}

	// Scheduled maintenance, enabled unless explicitly turned off
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" {
		cronManager = cron.NewCronManager(store.DB())
		if err := cronManager.Start(); err != nil {
			log.Printf("Warning: failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}

	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	router.SetupRoutes(app, store)

	return server.Run()
}
