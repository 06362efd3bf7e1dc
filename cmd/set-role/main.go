package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/unimag/internal/config"
	"github.com/dimitrije/unimag/internal/database"
	"github.com/dimitrije/unimag/internal/provider"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: set-role <email> <author|editor|admin>")
		os.Exit(1)
	}

	email, role := os.Args[1], os.Args[2]

	databaseURL, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := provider.NewPostgresProfiles(db).SetRole(ctx, email, role); err != nil {
		log.Fatalf("Failed to set role: %v", err)
	}

	fmt.Printf("Successfully set role of %s to %s\n", email, role)
}
