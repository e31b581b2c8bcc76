// Provisioning script for the initial admin account
// cmd/seed-admin/main.go
package main

import (
	"flag"
	"log"
	"time"

	"content-approval-api/config"
	"content-approval-api/controllers"
	"content-approval-api/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Administrator", "admin display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: seed-admin -email admin@example.org -password <password> [-name <name>]")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var existing models.User
	if err := config.DB.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("User %s already exists", *email)
	}

	hashed, err := controllers.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.User{
		UserID:    uuid.NewString(),
		Email:     *email,
		Password:  hashed,
		FullName:  *name,
		Role:      models.RoleAdmin,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Admin user %s created (%s)", *email, admin.UserID)
}
