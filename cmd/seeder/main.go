// Seeder fetches products from the marketplace search API and writes
// the catalog snapshot the dashboard service loads at boot.
//
// Usage: seeder <quantity> <query words...>
package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wbpulse/wbpulse/pkg/storage"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

const defaultSearchUrl = "https://search.wb.ru/exactmatch/ru/common/v4/search"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded")
	}

	if len(os.Args) < 3 {
		log.Fatalf("Usage: %s <quantity> <query words...>", os.Args[0])
	}
	quantity, err := strconv.Atoi(os.Args[1])
	if err != nil || quantity <= 0 {
		log.Fatalf("Invalid quantity %q", os.Args[1])
	}
	query := strings.Join(os.Args[2:], " ")

	searchUrl := os.Getenv("SEARCH_URL")
	if searchUrl == "" {
		searchUrl = defaultSearchUrl
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	client := upstream.NewClient("", searchUrl)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Printf("Searching products for query: %s", query)
	products, err := client.Search(ctx, query, quantity)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	log.Printf("Found products: %d", len(products))

	db := storage.NewDiskStorage(dataDir)
	if err := db.SaveCatalog(products); err != nil {
		log.Fatalf("Failed to write snapshot: %v", err)
	}
	log.Printf("Snapshot written to %s", dataDir)
}
