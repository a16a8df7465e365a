package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wbpulse/wbpulse/pkg/common"
	"github.com/wbpulse/wbpulse/pkg/messaging"
	"github.com/wbpulse/wbpulse/pkg/server"
	"github.com/wbpulse/wbpulse/pkg/storage"
	"github.com/wbpulse/wbpulse/pkg/store"
	"github.com/wbpulse/wbpulse/pkg/tracking"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

var enableProfiling = flag.Bool("profiling", true, "enable profiling endpoints")

const defaultSearchUrl = "https://search.wb.ru/exactmatch/ru/common/v4/search"

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func serverKey() []byte {
	if v := os.Getenv("SERVER_KEY"); v != "" {
		return []byte(v)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Failed to generate server key: %v", err)
	}
	return key
}

func main() {
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded")
	}

	var (
		listenAddress = getEnv("LISTEN_ADDRESS", ":8080")
		debugAddress  = getEnv("DEBUG_ADDRESS", ":8081")
		dataDir       = getEnv("DATA_DIR", "data")
		catalogUrl    = os.Getenv("CATALOG_URL")
		searchUrl     = getEnv("SEARCH_URL", defaultSearchUrl)
		rabbitUrl     = os.Getenv("RABBIT_URL")
		rabbitPrefix  = getEnv("RABBIT_PREFIX", "wbpulse")
		clientName    = os.Getenv("NODE_NAME")
		redisUrl      = os.Getenv("REDIS_URL")
		redisPassword = os.Getenv("REDIS_PASSWORD")
		adminKey      = os.Getenv("ADMIN_KEY")
	)

	db := storage.NewDiskStorage(dataDir)
	catalogStore := store.New()
	client := upstream.NewClient(catalogUrl, searchUrl)

	srv := &server.WebServer{
		Store:    catalogStore,
		Upstream: client,
		Storage:  db,
		Auth:     &server.Auth{ServerKey: serverKey(), AdminKey: adminKey},
	}

	if redisUrl != "" {
		srv.Cache = server.NewCache(redisUrl, redisPassword, 0)
		log.Printf("Chart cache enabled, url: %s", redisUrl)
	}

	// Load the last snapshot before the publisher is wired so a plain
	// restart does not announce a catalog change.
	if products, err := db.LoadCatalog(); err == nil {
		catalogStore.ReplaceAll(products)
		log.Printf("Loaded %d products from snapshot", len(products))
	} else if !errors.Is(err, storage.ErrNoSnapshot) {
		log.Printf("Failed to load snapshot: %v", err)
	}

	reload := func() {
		if catalogUrl == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		products, err := client.LoadCatalog(ctx)
		if err != nil {
			log.Printf("Failed to load catalog from %s: %v", catalogUrl, err)
			return
		}
		catalogStore.ReplaceAll(products)
		log.Printf("Loaded %d products from %s", len(products), catalogUrl)
	}

	if rabbitUrl != "" {
		if trk, err := tracking.NewRabbitTracking(rabbitUrl, rabbitPrefix); err != nil {
			log.Printf("Failed to connect tracking: %v", err)
		} else {
			srv.Tracking = trk
		}

		if clientName == "" {
			publisher, err := messaging.NewCatalogPublisher(rabbitUrl, rabbitPrefix)
			if err != nil {
				log.Printf("Failed to connect catalog publisher: %v", err)
			} else {
				catalogStore.ChangeHandler = publisher
				srv.Announce = publisher
			}
		} else {
			log.Printf("Starting as client: %s", clientName)
			_, err := messaging.ListenForCatalogUpdates(rabbitUrl, rabbitPrefix, func(update messaging.CatalogUpdated) {
				log.Printf("Catalog update announced (%d products), re-fetching", update.Count)
				reload()
			})
			if err != nil {
				log.Fatalf("Failed to listen for catalog updates: %v", err)
			}
		}
	}

	if !catalogStore.Loaded() {
		go reload()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", srv.ClientHandler()))
	mux.Handle("/admin/", http.StripPrefix("/admin", srv.AdminHandler()))

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !catalogStore.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if enableProfiling != nil && *enableProfiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	go func() {
		log.Printf("Starting debug server %v", debugAddress)
		log.Fatal(http.ListenAndServe(debugAddress, debugMux))
	}()

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       30 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})
	apiServer := common.NewServerWithTimeouts(&http.Server{Addr: listenAddress, Handler: mux}, timeouts)

	saveHook := func(ctx context.Context) error {
		products, err := catalogStore.Products()
		if err != nil {
			return nil
		}
		return db.SaveCatalog(products)
	}
	common.RunServerWithShutdown(apiServer, "wbpulse api", timeouts.Shutdown, timeouts.Hook, saveHook)
}
