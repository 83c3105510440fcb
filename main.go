package main

import (
	"log"
	"os"
	"time"

	"Atlas/CronJobs"
	"Atlas/FiberConfig"
	"Atlas/Models"
	"Atlas/Notifications"
	"Atlas/Telematics"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	Models.Connect()

	if err := Notifications.InitFirebase(); err != nil {
		log.Println("Firebase init failed:", err)
	}

	scheduler := CronJobs.NewInspectionScheduler(false)
	if err := scheduler.Start(); err != nil {
		log.Println("Failed to start inspection scheduler:", err)
	}
	defer scheduler.Stop()

	go Telematics.Run(time.Minute * 15)

	FiberConfig.FiberConfig()
}

func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	// Set up main application log file
	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)

	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	// Redirect log output to the file
	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
