package main

import (
	"log"

	"maitree/config"
	"maitree/database"
	"maitree/services/content"
)

func main() {
	config.LoadConfig()
	db := database.ConnectDb()

	updated, err := content.BackfillAfterLesson(db)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Set afterLesson on %d quizzes", updated)
}
