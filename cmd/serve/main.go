package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"wld-viewer/internal/catalog"
	"wld-viewer/internal/config"
	"wld-viewer/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to viewer.yaml config file")
	addr := flag.String("addr", "", "Listen address (default :8080)")
	dbPath := flag.String("db", "", "Catalog database path; empty disables /api/worlds")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{ListenAddr: *addr, DBPath: *dbPath})

	logger := log.New(os.Stderr, "serve: ", log.LstdFlags)

	var db *catalog.DB
	if *dbPath != "" || *configFile != "" {
		var err error
		db, err = catalog.Open(cfg.DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	srv := server.New(db, logger)
	logger.Printf("listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
