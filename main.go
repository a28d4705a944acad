// backend/main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/dir-tecno/capacita/backend/config"
	"github.com/dir-tecno/capacita/backend/database"
	"github.com/dir-tecno/capacita/backend/handlers"
	"github.com/dir-tecno/capacita/backend/services"
	"github.com/dir-tecno/capacita/backend/storage"
)

func main() {
	log.Println("Starting CBA ME CAPACITA Backend Application...")

	configPath := "backend/config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config/config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}

	err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)
	log.Printf("Storage bucket: %s, dataset repo: %s",
		config.AppConfig.Storage.Bucket, config.AppConfig.DatasetHub.RepoID)

	err = database.InitDB(config.AppConfig.Database)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	// Stores and services
	equivalenceStore := database.NewEquivalenceStore(database.DB)
	catalogStore := database.NewCatalogStore(database.DB)
	equivalenceService := services.NewEquivalenceService(equivalenceStore)

	bucketClient := storage.NewBucketClient(config.AppConfig.Storage)
	hubClient := storage.NewHubClient(config.AppConfig.DatasetHub)
	datasetService := services.NewDatasetService(bucketClient, hubClient)

	// Warm the dataset snapshot. A failure here is not fatal: the dataset
	// pages report "try again later" until an admin refresh succeeds, while
	// the equivalence workflow keeps working against the database.
	if err := datasetService.Refresh(); err != nil {
		log.Printf("WARN: Initial dataset refresh failed: %v. Dataset pages degraded until next refresh.", err)
	}

	// Handlers
	equivalenceHandler := &handlers.EquivalenceHandler{Service: equivalenceService}
	catalogHandler := &handlers.CatalogHandler{Store: catalogStore}
	datasetHandler := &handlers.DatasetHandler{Service: datasetService}
	adminHandler := &handlers.AdminHandler{Datasets: datasetService, Bucket: bucketClient}

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "CBA ME CAPACITA backend is healthy"}`)
	})

	http.HandleFunc("/api/equivalences", equivalenceHandler.Collection)
	http.HandleFunc("/api/equivalences/", equivalenceHandler.Item) // Path ends with / to catch ids

	http.HandleFunc("/api/courses", catalogHandler.Courses)
	http.HandleFunc("/api/certifications", catalogHandler.Certifications)

	http.HandleFunc("/api/students", datasetHandler.Students)
	http.HandleFunc("/api/students/export", datasetHandler.StudentsExport)
	http.HandleFunc("/api/offerings", datasetHandler.Offerings)
	http.HandleFunc("/api/teachers", datasetHandler.Teachers)

	http.HandleFunc("/api/admin/refresh-datasets", adminHandler.RefreshDatasets)
	http.HandleFunc("/api/admin/bucket", adminHandler.ListBucket)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	err = http.ListenAndServe(serverAddr, nil)
	if err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
