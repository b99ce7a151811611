package main

import (
	"context"
	"log"

	"ai-ops-copilot-be/internal/bootstrap"
	"ai-ops-copilot-be/internal/config"
	"ai-ops-copilot-be/internal/server"
	"ai-ops-copilot-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Load the knowledge base so tickets retrieve against something
	if report, err := container.KnowledgeService.Ingest(context.Background()); err != nil {
		log.Printf("[WARN] Knowledge base ingestion failed: %v", err)
	} else {
		log.Printf("Knowledge base ready: %d documents, %d chunks", report.DocumentsLoaded, report.ChunksStored)
	}

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// Bridge bus events to connected operator consoles
	if err := container.NotificationService.Listen(); err != nil {
		log.Printf("Background Notification Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
