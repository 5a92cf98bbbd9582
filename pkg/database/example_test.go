package database_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/database"
)

// Example demonstrates how to use the database package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		return
	}
	defer db.Close()

	stats := db.Stats()
	fmt.Printf("Total connections: %d\n", stats.TotalConns)
}
