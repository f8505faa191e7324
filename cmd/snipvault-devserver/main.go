package main

import (
	"log"
	"os"

	"github.com/existflow/snipvault/internal/fakeapi"
	"github.com/existflow/snipvault/internal/logger"
	"github.com/google/uuid"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = uuid.NewString()
		log.Printf("JWT_SECRET not set, tokens will not survive a restart")
	}

	level := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	srv := fakeapi.New(secret, logger.NewWriter(os.Stdout, level))

	log.Printf("SnipVault dev server starting on :%s", port)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
