package main

import (
	"github.com/sirupsen/logrus" // Structured logging

	"social_network/internal/config" // Custom import path (Config)
	"social_network/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration

	conn, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(conn); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}
}
