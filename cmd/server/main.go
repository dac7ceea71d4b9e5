package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/llm-lab/backend/internal/auth"
	"github.com/llm-lab/backend/internal/database"
	"github.com/llm-lab/backend/internal/experiments"
	"github.com/llm-lab/backend/internal/generator"
	"github.com/llm-lab/backend/internal/middleware"
	"github.com/rs/cors"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize the generation pipeline
	client := generator.NewClient(generator.NewLLMClientFromEnv())
	orchestrator := generator.NewOrchestrator(client)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	experimentService := experiments.NewService(experiments.NewStore(db), orchestrator)
	experimentHandler := experiments.NewHandler(experimentService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Experiment routes
	api.HandleFunc("/experiments", experimentHandler.CreateExperiment).Methods("POST")
	api.HandleFunc("/experiments", experimentHandler.ListExperiments).Methods("GET")
	api.HandleFunc("/experiments/{id}", experimentHandler.GetExperiment).Methods("GET")
	api.HandleFunc("/experiments/{id}/generate", experimentHandler.Generate).Methods("POST")
	api.HandleFunc("/experiments/{id}/responses", experimentHandler.ListResponses).Methods("GET")
	api.HandleFunc("/experiments/{id}/export", experimentHandler.Export).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","time":%q}`, time.Now().UTC().Format(time.RFC3339))
	}).Methods("GET")

	// Per-IP rate limiting across the whole API
	limiter := middleware.NewRateLimiter(10, 20)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(limiter.Middleware(r))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
