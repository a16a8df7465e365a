// Manage is the maintenance utility for the catalog snapshot.
//
// Usage: manage clear_db
package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/wbpulse/wbpulse/pkg/storage"
)

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	switch flag.Arg(0) {
	case "clear_db":
		db := storage.NewDiskStorage(dataDir)
		if err := db.ClearCatalog(); err != nil {
			log.Fatalf("Error while clearing catalog: %v", err)
		}
		log.Println("Catalog snapshot cleared successfully!")
	default:
		log.Fatalf("Unknown command: %q (available: clear_db)", flag.Arg(0))
	}
}
