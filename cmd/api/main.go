package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/ovenlight/bakery-api/internal/database"
	"github.com/ovenlight/bakery-api/internal/handlers"
	"github.com/ovenlight/bakery-api/internal/linking"
	"github.com/ovenlight/bakery-api/internal/routes"
	"github.com/ovenlight/bakery-api/internal/status"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	// 2. --- Application Setup ---
	// Everything is dependency-injected into the Handlers struct; the
	// status engine and linker get their own SQL-backed stores.
	countryCode := os.Getenv("WHATSAPP_COUNTRY_CODE")
	if countryCode == "" {
		countryCode = "60"
	}

	app := &handlers.Handlers{
		DB:     db,
		Linker: linking.NewLinker(&linking.SQLStore{DB: db}, logger),
		Logger: logger,
	}
	app.Status = status.NewEngine(&status.SQLStore{DB: db}, app, logger, countryCode)

	// 3. --- Background Worker ---
	// Prunes read notifications older than 90 days, once an hour.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		logger.Println("Background worker started: notification cleanup")

		for range ticker.C {
			app.CleanupReadNotifications()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting Ovenlight bakery API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
