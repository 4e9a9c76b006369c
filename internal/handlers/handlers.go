package handlers

import (
	"database/sql"
	"log"

	"github.com/ovenlight/bakery-api/internal/linking"
	"github.com/ovenlight/bakery-api/internal/status"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Status *status.Engine
	Linker *linking.Linker
	Logger *log.Logger
}
