// Package server contains the go-gin-server setup and route registration.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"HireSight-backend/internal/ai"
	"HireSight-backend/internal/controller"
	"HireSight-backend/internal/database"
	"HireSight-backend/internal/email"
	"HireSight-backend/internal/extract"
	"HireSight-backend/internal/screening"
	"HireSight-backend/internal/storage"
)

// MyServer holds the database instance and the wired pipeline collaborators.
type MyServer struct {
	DB         *database.DBinstanceStruct
	Controller *controller.Controller
}

// NewServer builds the full application: database, job store, screening
// pipeline, and the optional AI, mail, and storage integrations. Missing
// integrations log a warning and the related endpoints answer 503.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}

	store := database.NewJobStore(db)
	cache := screening.NewScoreCache()
	gate := screening.NewGate()

	var mailer email.Sender
	if m, err := email.NewMailerFromEnv(); err != nil {
		log.Printf("Mail delivery disabled: %s", err)
	} else {
		mailer = m
	}

	var aiClient *ai.Client
	var worker *screening.Worker
	if c, err := ai.NewClientFromEnv(); err != nil {
		log.Printf("AI screening disabled: %s", err)
	} else {
		aiClient = c
		worker = screening.NewWorker(store, c, extract.NewResumeExtractor(), gate, cache, screening.DefaultScoreDelay)
	}

	policy := screening.NewPolicy(store, mailer, screening.DefaultRejectDelay)

	var files *storage.CloudStorageClient
	if bucket := os.Getenv("GCS_BUCKET"); bucket == "" {
		log.Print("File storage disabled: GCS_BUCKET not set")
	} else if f, err := storage.NewCloudStorageClient(context.Background(), bucket); err != nil {
		log.Printf("File storage disabled: %s", err)
	} else {
		files = f
	}

	s := &MyServer{
		DB:         db,
		Controller: controller.NewController(db, store, worker, policy, cache, aiClient, mailer, files),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}
}
