package config_test

import (
	"fmt"

	"github.com/wonny/memestock/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Store backend: %s\n", cfg.Store.Backend)
	fmt.Printf("Forums: %v\n", cfg.Insight.Forums)
	fmt.Printf("Refresh every: %s\n", cfg.Insight.RefreshInterval)
}
