package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"HireSight-backend/internal/database"
	"HireSight-backend/internal/model"
)

// generateRandomString creates a random hex string of length 2n
func generateRandomString(n int) string {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal(err)
	}
	return hex.EncodeToString(bytes)
}

// generateUniqueUsername tries until a unique username is found
func generateUniqueUsername(db *gorm.DB) string {
	for {
		username := "admin_" + generateRandomString(4)
		var count int64
		db.Model(&model.User{}).Where("username = ?", username).Count(&count)
		if count == 0 {
			return username
		}
	}
}

func main() {

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatal("failed to connect to database: ", err)
	}

	username := generateUniqueUsername(db.DB)
	password := generateRandomString(8)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("failed to hash password: ", err)
	}

	admin := model.User{
		Username: username,
		Password: string(hashedPassword),
		Role:     model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatal("failed to create admin: ", err)
	}

	fmt.Println("Admin credentials generated successfully!")
	fmt.Println("======================================")
	fmt.Printf("Username: %s\n", admin.Username)
	fmt.Printf("Password: %s\n", password)
	fmt.Println("======================================")

	os.Exit(0)
}
