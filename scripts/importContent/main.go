package main

import (
	"log"
	"os"

	"maitree/config"
	"maitree/database"
	"maitree/services/content"
)

func main() {
	// Load config and connect to database
	config.LoadConfig()
	db := database.ConnectDb()

	path := "content.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	bundle, err := content.LoadBundle(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}
	log.Printf("Importing %d lessons and %d quizzes from %s", len(bundle.Lessons), len(bundle.Quizzes), path)

	stats, err := content.Import(db, bundle)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import complete: %d lessons, %d quizzes upserted", stats.Lessons, stats.Quizzes)
}
