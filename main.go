package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"maitree/config"
	"maitree/database"
	"maitree/routers"
	"maitree/services"
	"maitree/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	db := database.ConnectDb()

	utils.InitErrorReporting(cfg.RollbarToken, cfg.AppEnv, "")
	defer utils.CloseErrorReporting()

	mailer := utils.NewMailer(cfg.SendgridApiKey, cfg.AppName, cfg.EmailSender)
	svc := services.New(db, cfg, mailer)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	routers.SetupRoutes(app, svc)

	reminders := utils.NewReminderScheduler(db, mailer, cfg.ReminderCron)
	if err := reminders.Start(); err != nil {
		log.Fatalf("Failed to start reminder scheduler: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		<-reminders.Stop().Done()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
