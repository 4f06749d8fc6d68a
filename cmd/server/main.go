package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"neuromind/internal/api"
	"neuromind/internal/config"
	"neuromind/internal/services"
)

func main() {
	cfg := config.Load()

	if cfg.OpenAIKey == "" {
		log.Printf("warning: OPENAI_API_KEY is not set, generation endpoints will be unavailable")
	}

	pdfService := services.NewPDFService()
	aiService := services.NewAIService(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIEndpoint)
	sessionService := services.NewSessionService()
	ttsService := services.NewTTSService(cfg.TTSBaseURL, cfg.TTSLanguage)
	studyService := services.NewStudyService(pdfService, aiService, sessionService, ttsService)

	server := api.NewServer(studyService, cfg.MaxUploadBytes)
	mux := http.NewServeMux()
	mux.Handle("/api", server.Handler())
	mux.Handle("/api/", server.Handler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
