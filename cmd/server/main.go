package main

import (
	"log"
	"os"

	"github.com/david/parts-broker/internal/ai"
	"github.com/david/parts-broker/internal/api"
	"github.com/david/parts-broker/internal/catalog"
	"github.com/david/parts-broker/internal/procure"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	snapshot, err := catalog.Load()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Loaded %d products and %d suppliers", len(snapshot.Products()), len(snapshot.Suppliers()))

	pricing, err := procure.LoadPricingConfig()
	if err != nil {
		log.Fatalf("Failed to load pricing config: %v", err)
	}
	synth := procure.NewSynthesizer(pricing, nil)

	// Without an API key the pipeline runs on the deterministic keyword
	// fallback for parsing and the generic recommendation line.
	var resolver procure.IntentResolver
	var recommender procure.Recommender
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		client := ai.NewClient(apiKey, os.Getenv("OPENAI_MODEL"))
		resolver = client
		recommender = client
	} else {
		log.Print("OPENAI_API_KEY is not set; using keyword fallback for query parsing")
	}

	pipeline := procure.NewPipeline(snapshot, synth, resolver, recommender)

	srv := api.NewServer(snapshot, pipeline)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
