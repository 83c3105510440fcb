package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "database.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbPath))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	// 1. Base tables with no dependencies
	DB.AutoMigrate(
		&User{},
		&EquipmentType{},
		&FCMToken{},
	)

	// 2. Tables with simple foreign keys
	DB.AutoMigrate(
		&Equipment{},
		&ChecklistTemplateItem{},
		&HourReading{},
	)

	// 3. Workflow aggregates last
	DB.AutoMigrate(
		&Inspection{},
		&InspectionItem{},
		&InspectionResult{},
		&MaintenanceRecord{},
		&MaintenanceTask{},
		&MaintenancePart{},
	)

	if err := SetupTemplateIndexes(DB); err != nil {
		log.Printf("Error creating template indexes: %v", err)
	}

	seedAdmin()
}

// seedAdmin creates the bootstrap admin account when the users table is empty.
func seedAdmin() {
	var count int64
	DB.Model(&User{}).Count(&count)
	if count > 0 {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := User{
		Name:       "Admin",
		Email:      "admin@atlas.local",
		Password:   hashed,
		Permission: PermissionAdmin,
		IsApproved: true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
	}
}
