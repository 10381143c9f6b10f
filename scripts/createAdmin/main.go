package main

import (
	"flag"
	"log"

	"maitree/config"
	"maitree/database"
	"maitree/services/account"
)

func main() {
	name := flag.String("name", "Admin", "display name")
	identifier := flag.String("id", "", "phone or email of the admin")
	password := flag.String("password", "", "password, at least 8 characters")
	flag.Parse()

	if *identifier == "" || *password == "" {
		log.Fatal("usage: createAdmin -id <phone|email> -password <password> [-name <name>]")
	}

	config.LoadConfig()
	db := database.ConnectDb()

	accounts := account.NewService(db, nil, account.Options{SaltRound: config.AppConfig.SaltRound})
	admin, err := accounts.EnsureAdmin(*name, *identifier, *password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	log.Printf("Admin ready: id=%d referralCode=%s", admin.ID, admin.ReferralCode)
}
