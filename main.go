package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"bookline/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	// Run the application
	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error:", err)
	}
}
