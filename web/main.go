package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/df07/go-schwarzschild-raytracer/pkg/catalog"
	"github.com/df07/go-schwarzschild-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes", "scenes", "Directory of JSON scene files")
	storeKind := flag.String("store", "memory", "Render catalog backend: memory or sqlite")
	dbPath := flag.String("db-path", "renders.db", "SQLite catalog path")
	flag.Parse()

	store, err := catalog.OpenStore(context.Background(), *storeKind, *dbPath)
	if err != nil {
		log.Printf("Error opening render catalog: %v", err)
		os.Exit(1)
	}
	defer catalog.CloseIfSupported(store)

	webServer, err := server.NewServer(*port, *scenesDir, store)
	if err != nil {
		log.Printf("Error creating server: %v", err)
		os.Exit(1)
	}

	log.Printf("Schwarzschild Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
